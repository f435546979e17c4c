package moderation

import (
	"context"
	"errors"
	"fmt"

	"orion-bot/model"
	"orion-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// ErrNoLogChannel is returned when a guild has no moderation log channel.
var ErrNoLogChannel = errors.New("no moderation log channel configured")

// LogKind selects which settings toggle gates a log entry.
type LogKind int

const (
	LogWarnings LogKind = iota
	LogLocks
	LogSlowmode
)

func (k LogKind) enabled(s model.ModerationSettings) bool {
	switch k {
	case LogWarnings:
		return s.LogWarnings
	case LogLocks:
		return s.LogLocks
	case LogSlowmode:
		return s.LogSlowmode
	}
	return false
}

// SettingsStore reads and writes per-guild moderation settings.
type SettingsStore interface {
	Get(ctx context.Context, guildID string) (model.ModerationSettings, error)
	Update(ctx context.Context, guildID string, u model.ModerationSettingsUpdate) (model.ModerationSettings, error)
}

// ModLog posts moderation events to each guild's configured log channel.
type ModLog struct {
	sender   utils.EmbedSender
	settings SettingsStore
	log      zerolog.Logger
}

func NewModLog(sender utils.EmbedSender, settings SettingsStore) *ModLog {
	return &ModLog{sender: sender, settings: settings, log: utils.Module("modlog")}
}

// Settings returns the guild's settings.
func (l *ModLog) Settings(ctx context.Context, guildID string) (model.ModerationSettings, error) {
	return l.settings.Get(ctx, guildID)
}

// Post sends embed to the guild's log channel if one is configured and the
// toggle for kind is on. Failures are logged and never returned; moderation
// actions are not rolled back because their log entry could not be posted.
func (l *ModLog) Post(ctx context.Context, guildID string, kind LogKind, embed *discordgo.MessageEmbed) bool {
	settings, err := l.settings.Get(ctx, guildID)
	if err != nil {
		l.log.Warn().Err(err).Str("guild", guildID).Msg("Could not load moderation settings")
		return false
	}
	if settings.LogsChannelID == "" || !kind.enabled(settings) {
		return false
	}
	if _, err := l.sender.ChannelMessageSendEmbed(settings.LogsChannelID, embed, discordgo.WithContext(ctx)); err != nil {
		l.log.Warn().Err(err).Str("guild", guildID).Str("channel", settings.LogsChannelID).Msg("Failed to post moderation log")
		return false
	}
	return true
}

// Test posts embed to the log channel regardless of toggles.
func (l *ModLog) Test(ctx context.Context, guildID string, embed *discordgo.MessageEmbed) (string, error) {
	settings, err := l.settings.Get(ctx, guildID)
	if err != nil {
		return "", err
	}
	if settings.LogsChannelID == "" {
		return "", ErrNoLogChannel
	}
	if _, err := l.sender.ChannelMessageSendEmbed(settings.LogsChannelID, embed, discordgo.WithContext(ctx)); err != nil {
		return "", platformErr(fmt.Sprintf("post to %s", settings.LogsChannelID), err)
	}
	return settings.LogsChannelID, nil
}

// SetupRequest configures the log channel and toggles. A nil field is left unchanged.
type SetupRequest struct {
	GuildID       string
	LogsChannelID *string
	// CreateChannel creates a private text channel named ChannelName when no
	// LogsChannelID is given.
	CreateChannel bool
	ChannelName   string
	CategoryID    string
	LogWarnings   *bool
	LogLocks      *bool
	LogSlowmode   *bool
	NotifyDM      *bool
}

// Setup applies a SetupRequest and returns the resulting settings.
func (l *ModLog) Setup(ctx context.Context, p Platform, req SetupRequest) (model.ModerationSettings, error) {
	update := model.ModerationSettingsUpdate{
		LogsChannelID: req.LogsChannelID,
		LogWarnings:   req.LogWarnings,
		LogLocks:      req.LogLocks,
		LogSlowmode:   req.LogSlowmode,
		NotifyDM:      req.NotifyDM,
	}
	if req.LogsChannelID == nil && req.CreateChannel {
		name := req.ChannelName
		if name == "" {
			name = "mod-logs"
		}
		ch, err := p.GuildChannelCreateComplex(req.GuildID, discordgo.GuildChannelCreateData{
			Name:     name,
			Type:     discordgo.ChannelTypeGuildText,
			ParentID: req.CategoryID,
			PermissionOverwrites: []*discordgo.PermissionOverwrite{{
				ID:   req.GuildID,
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			}},
		}, requestOptions(ctx, "Moderation setup")...)
		if err != nil {
			return model.ModerationSettings{}, platformErr("create log channel", err)
		}
		update.LogsChannelID = &ch.ID
	}
	if update.IsEmpty() {
		return l.settings.Get(ctx, req.GuildID)
	}
	return l.settings.Update(ctx, req.GuildID, update)
}
