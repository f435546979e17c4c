package tasks

import (
	"context"
	"fmt"

	"orion-bot/i18n"
	"orion-bot/model"

	"github.com/bwmarrin/discordgo"
)

// MessageSender is the part of *discordgo.Session used to post announcements.
type MessageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer renders and posts due reminders and scheduled events. Its methods
// are the send functions handed to the delivery engines.
type Announcer struct {
	sender MessageSender
	tr     *i18n.Translator
	color  int
}

func NewAnnouncer(sender MessageSender, tr *i18n.Translator, color int) *Announcer {
	return &Announcer{sender: sender, tr: tr, color: color}
}

// Reminder pings the user in the channel the reminder was created in.
func (a *Announcer) Reminder(ctx context.Context, r model.Reminder) error {
	lang := a.tr.UserLanguage(ctx, r.UserID)
	msg := &discordgo.MessageSend{
		Content: "<@" + r.UserID + ">",
		Embeds: []*discordgo.MessageEmbed{{
			Title:       a.tr.Translate(lang, "timer.reminder_title", nil),
			Description: "**" + r.Message + "**",
			Color:       a.color,
			Footer: &discordgo.MessageEmbedFooter{
				Text: a.tr.Translate(lang, "timer.reminder_footer", i18n.Params{"created": r.CreatedAt.Format("2006-01-02 15:04 UTC")}),
			},
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{Users: []string{r.UserID}},
	}
	if _, err := a.sender.ChannelMessageSendComplex(r.ChannelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send reminder %d to %s: %w", r.ID, r.ChannelID, err)
	}
	return nil
}

// Schedule announces an event to everyone in its target channel.
func (a *Announcer) Schedule(ctx context.Context, s model.Schedule) error {
	lang := a.tr.UserLanguage(ctx, s.UserID)
	msg := &discordgo.MessageSend{
		Content: "@everyone",
		Embeds: []*discordgo.MessageEmbed{{
			Title:       a.tr.Translate(lang, "timer.schedule_title", nil),
			Description: a.tr.Translate(lang, "timer.schedule_starting", i18n.Params{"title": s.Title}),
			Color:       a.color,
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeEveryone},
		},
	}
	if _, err := a.sender.ChannelMessageSendComplex(s.ChannelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send schedule %d to %s: %w", s.ID, s.ChannelID, err)
	}
	return nil
}
