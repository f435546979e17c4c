package commands

import (
	"context"
	"fmt"
	"strings"

	"orion-bot/i18n"
	"orion-bot/model"
	"orion-bot/moderation"
	"orion-bot/utils"

	"github.com/bwmarrin/discordgo"
)

type RemindArgs struct {
	When string
	What string
}

// Remind stores a reminder and arms its timer.
func (d *Deps) Remind(ctx context.Context, c Caller, args RemindArgs) (*Reply, error) {
	what := strings.TrimSpace(args.What)
	if what == "" {
		return nil, userErr("timer.message_required", nil, nil)
	}
	now := d.now()
	at, err := utils.ResolveDeadline(args.When, now)
	if err != nil {
		return nil, err
	}

	r := model.Reminder{
		UserID:    c.UserID,
		ChannelID: c.ChannelID,
		Message:   what,
		RemindAt:  model.NewUnixTime(at),
		CreatedAt: model.NewUnixTime(now),
	}
	if err := d.Store.Reminders().Insert(ctx, &r); err != nil {
		return nil, err
	}
	d.Reminders.Schedule(r)

	return embedReply(&discordgo.MessageEmbed{
		Title:       d.t(c, "timer.reminder_set_title", nil),
		Description: d.t(c, "timer.reminder_set_description", i18n.Params{"message": what}),
		Color:       d.color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: d.t(c, "generic.when", nil), Value: moderation.RelativeTime(at), Inline: true},
			{Name: d.t(c, "timer.time_remaining", nil), Value: FormatHM(at.Sub(now)), Inline: true},
		},
	}), nil
}

type ScheduleArgs struct {
	Title string
	When  string
	// ChannelID defaults to the caller's channel.
	ChannelID string
}

// Schedule stores an event announcement and arms its timer.
func (d *Deps) Schedule(ctx context.Context, c Caller, args ScheduleArgs) (*Reply, error) {
	title := strings.TrimSpace(args.Title)
	if title == "" {
		return nil, userErr("timer.title_required", nil, nil)
	}
	now := d.now()
	at, err := utils.ResolveDeadline(args.When, now)
	if err != nil {
		return nil, err
	}
	channelID := args.ChannelID
	if channelID == "" {
		channelID = c.ChannelID
	}

	s := model.Schedule{
		UserID:      c.UserID,
		ChannelID:   channelID,
		Title:       title,
		ScheduledAt: model.NewUnixTime(at),
		CreatedAt:   model.NewUnixTime(now),
	}
	if err := d.Store.Schedules().Insert(ctx, &s); err != nil {
		return nil, err
	}
	d.Schedules.Schedule(s)

	return embedReply(&discordgo.MessageEmbed{
		Title:       d.t(c, "timer.schedule_title", nil),
		Description: "**" + title + "**",
		Color:       d.color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: d.t(c, "generic.channel", nil), Value: "<#" + channelID + ">", Inline: true},
			{Name: d.t(c, "generic.when", nil), Value: moderation.RelativeTime(at), Inline: true},
			{Name: d.t(c, "timer.time_remaining", nil), Value: FormatHM(at.Sub(now)), Inline: true},
		},
	}), nil
}

// Timers lists the caller's pending reminders and scheduled events.
func (d *Deps) Timers(ctx context.Context, c Caller) (*Reply, error) {
	reminders, err := d.Store.Reminders().ListByUser(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	schedules, err := d.Store.Schedules().ListByUser(ctx, c.UserID)
	if err != nil {
		return nil, err
	}

	none := d.t(c, "generic.none", nil)
	var rl, sl []string
	for _, r := range reminders {
		rl = append(rl, fmt.Sprintf("`#%d` %s • %s", r.ID, moderation.RelativeTime(r.RemindAt.Time), utils.Truncate(r.Message, 80)))
	}
	for _, s := range schedules {
		sl = append(sl, fmt.Sprintf("`#%d` %s • <#%s> • %s", s.ID, moderation.RelativeTime(s.ScheduledAt.Time), s.ChannelID, utils.Truncate(s.Title, 80)))
	}
	field := func(name string, lines []string) *discordgo.MessageEmbedField {
		v := none
		if len(lines) > 0 {
			v = utils.Truncate(strings.Join(lines, "\n"), 1024)
		}
		return &discordgo.MessageEmbedField{Name: name, Value: v}
	}

	return &Reply{
		Embeds: []*discordgo.MessageEmbed{{
			Title: d.t(c, "timer.list_title", nil),
			Color: d.color(),
			Fields: []*discordgo.MessageEmbedField{
				field(d.t(c, "timer.reminders", nil), rl),
				field(d.t(c, "timer.schedules", nil), sl),
			},
		}},
		Ephemeral: true,
	}, nil
}
