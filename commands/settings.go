package commands

import (
	"context"

	"orion-bot/i18n"
	"orion-bot/model"
	"orion-bot/moderation"

	"github.com/bwmarrin/discordgo"
)

// SetupArgs mirrors the /moderation setup options. Nil fields are unchanged.
type SetupArgs struct {
	LogsChannelID *string
	CreateChannel bool
	ChannelName   string
	CategoryID    string
	LogWarnings   *bool
	LogLocks      *bool
	LogSlowmode   *bool
	NotifyDM      *bool
}

func (d *Deps) settingsFields(c Caller, s model.ModerationSettings) []*discordgo.MessageEmbedField {
	return []*discordgo.MessageEmbedField{
		{Name: d.t(c, "moderation.log_warnings", nil), Value: d.onOff(c, s.LogWarnings), Inline: true},
		{Name: d.t(c, "moderation.log_locks", nil), Value: d.onOff(c, s.LogLocks), Inline: true},
		{Name: d.t(c, "moderation.log_slowmode", nil), Value: d.onOff(c, s.LogSlowmode), Inline: true},
		{Name: d.t(c, "moderation.notify_dm", nil), Value: d.onOff(c, s.NotifyDM), Inline: true},
	}
}

func (d *Deps) channelOrNone(c Caller, id string) string {
	if id == "" {
		return d.t(c, "moderation.not_configured", nil)
	}
	return "<#" + id + ">"
}

// ModerationShow displays the guild's moderation settings.
func (d *Deps) ModerationShow(ctx context.Context, c Caller) (*Reply, error) {
	if err := requirePermissions(c, discordgo.PermissionManageGuild); err != nil {
		return nil, err
	}
	s, err := d.ModLog.Settings(ctx, c.GuildID)
	if err != nil {
		return nil, err
	}
	e := &discordgo.MessageEmbed{
		Title: d.emoji("menu") + d.t(c, "moderation.settings_title", nil),
		Color: d.color(),
		Fields: append([]*discordgo.MessageEmbedField{
			{Name: d.t(c, "moderation.logs_channel", nil), Value: d.channelOrNone(c, s.LogsChannelID)},
		}, d.settingsFields(c, s)...),
	}
	return &Reply{Embeds: []*discordgo.MessageEmbed{e}, Ephemeral: true}, nil
}

// ModerationSetup updates the log channel and toggles.
func (d *Deps) ModerationSetup(ctx context.Context, c Caller, args SetupArgs) (*Reply, error) {
	if err := requirePermissions(c, discordgo.PermissionManageGuild); err != nil {
		return nil, err
	}
	s, err := d.ModLog.Setup(ctx, d.Platform, moderation.SetupRequest{
		GuildID:       c.GuildID,
		LogsChannelID: args.LogsChannelID,
		CreateChannel: args.CreateChannel,
		ChannelName:   args.ChannelName,
		CategoryID:    args.CategoryID,
		LogWarnings:   args.LogWarnings,
		LogLocks:      args.LogLocks,
		LogSlowmode:   args.LogSlowmode,
		NotifyDM:      args.NotifyDM,
	})
	if err != nil {
		return nil, err
	}
	e := &discordgo.MessageEmbed{
		Title:       d.emoji("tick") + d.t(c, "moderation.setup_success_title", nil),
		Description: d.t(c, "moderation.setup_success_desc", i18n.Params{"channel": d.channelOrNone(c, s.LogsChannelID)}),
		Color:       d.color(),
		Fields:      d.settingsFields(c, s),
	}
	return &Reply{Embeds: []*discordgo.MessageEmbed{e}, Ephemeral: true}, nil
}

// ModerationTestLog posts a test entry to the log channel.
func (d *Deps) ModerationTestLog(ctx context.Context, c Caller) (*Reply, error) {
	if err := requirePermissions(c, discordgo.PermissionManageGuild); err != nil {
		return nil, err
	}
	channelID, err := d.ModLog.Test(ctx, c.GuildID, &discordgo.MessageEmbed{
		Title:       d.emoji("info") + d.t(c, "moderation.test_log_title", nil),
		Description: d.t(c, "moderation.test_log_description", nil),
		Color:       d.color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: d.t(c, "generic.moderator", nil), Value: "<@" + c.UserID + ">", Inline: true},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Reply{
		Content:   d.t(c, "moderation.test_log_sent", i18n.Params{"channel": "<#" + channelID + ">"}),
		Ephemeral: true,
	}, nil
}
