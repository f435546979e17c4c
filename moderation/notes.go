package moderation

import (
	"fmt"
	"time"

	"orion-bot/i18n"

	"github.com/bwmarrin/discordgo"
)

// Notes renders the lock, unlock and slowmode embeds shared by the slash
// commands, the moderation log and the expiry sweeper.
type Notes struct {
	tr    *i18n.Translator
	color int
}

func NewNotes(tr *i18n.Translator, color int) *Notes {
	return &Notes{tr: tr, color: color}
}

func (n *Notes) Color() int { return n.color }

func (n *Notes) field(lang, key, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: n.tr.Translate(lang, key, nil), Value: value, Inline: inline}
}

// Locked describes a new lock. moderatorID is only shown when non-empty.
func (n *Notes) Locked(lang, channelID, reason string, expiresAt *time.Time, moderatorID string) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: n.tr.Translate(lang, "moderation.channel_locked", nil),
		Color: n.color,
		Fields: []*discordgo.MessageEmbedField{
			n.field(lang, "generic.channel", "<#"+channelID+">", true),
		},
	}
	if reason != "" {
		e.Fields = append(e.Fields, n.field(lang, "generic.reason", reason, true))
	}
	if expiresAt != nil {
		e.Fields = append(e.Fields, n.field(lang, "generic.unlocks", RelativeTime(*expiresAt), true))
	}
	if moderatorID != "" {
		e.Fields = append(e.Fields, n.field(lang, "generic.moderator", "<@"+moderatorID+">", true))
	}
	return e
}

// Unlocked describes a release. moderatorID is only shown when non-empty.
func (n *Notes) Unlocked(lang, channelID, reason, moderatorID string) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: n.tr.Translate(lang, "moderation.channel_unlocked", nil),
		Color: n.color,
		Fields: []*discordgo.MessageEmbedField{
			n.field(lang, "generic.channel", "<#"+channelID+">", true),
		},
	}
	if reason != "" {
		e.Fields = append(e.Fields, n.field(lang, "generic.reason", reason, true))
	}
	if moderatorID != "" {
		e.Fields = append(e.Fields, n.field(lang, "generic.moderator", "<@"+moderatorID+">", true))
	}
	return e
}

// UnlockedNote is posted into the channel itself after it reopens.
func (n *Notes) UnlockedNote(lang string, auto bool) *discordgo.MessageEmbed {
	key := "moderation.unlocked_note"
	if auto {
		key = "moderation.auto_unlocked_note"
	}
	return &discordgo.MessageEmbed{
		Title:       n.tr.Translate(lang, "moderation.channel_unlocked", nil),
		Description: n.tr.Translate(lang, key, nil),
		Color:       n.color,
	}
}

// Slowmode describes a slowmode change.
func (n *Notes) Slowmode(lang, channelID string, seconds int, reason, moderatorID string) *discordgo.MessageEmbed {
	value := fmt.Sprintf("%ds", seconds)
	if seconds == 0 {
		value = n.tr.Translate(lang, "moderation.slowmode_off", nil)
	}
	e := &discordgo.MessageEmbed{
		Title: n.tr.Translate(lang, "moderation.slowmode_set", nil),
		Color: n.color,
		Fields: []*discordgo.MessageEmbedField{
			n.field(lang, "generic.channel", "<#"+channelID+">", true),
			n.field(lang, "moderation.slowmode_label", value, true),
		},
	}
	if reason != "" {
		e.Fields = append(e.Fields, n.field(lang, "generic.reason", reason, true))
	}
	if moderatorID != "" {
		e.Fields = append(e.Fields, n.field(lang, "generic.moderator", "<@"+moderatorID+">", true))
	}
	return e
}

// RelativeTime formats t as a Discord relative timestamp.
func RelativeTime(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}
