package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orion-bot/i18n"
	"orion-bot/model"
	"orion-bot/utils"
	"orion-bot/utils/database"

	"github.com/bwmarrin/discordgo"
)

const RepCooldown = 24 * time.Hour

// AFKSet marks the caller as away.
func (d *Deps) AFKSet(ctx context.Context, c Caller, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, userErr("afk.message_required", nil, nil)
	}
	err := d.Store.Members().SetAFK(ctx, model.AFKStatus{
		UserID:  c.UserID,
		Message: utils.Truncate(message, 500),
		SetAt:   model.NewUnixTime(d.now()),
	})
	if err != nil {
		return nil, err
	}
	return embedReply(&discordgo.MessageEmbed{
		Title:       d.t(c, "afk.set_title", nil),
		Description: d.t(c, "afk.set_description", i18n.Params{"message": message}),
		Color:       d.color(),
	}), nil
}

// AFKClear removes the caller's away status.
func (d *Deps) AFKClear(ctx context.Context, c Caller) (*Reply, error) {
	_, err := d.Store.Members().ClearAFK(ctx, c.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return embedReply(&discordgo.MessageEmbed{
			Title:       d.t(c, "afk.not_afk_title", nil),
			Description: d.t(c, "afk.not_afk_description", nil),
			Color:       d.color(),
		}), nil
	}
	if err != nil {
		return nil, err
	}
	return embedReply(&discordgo.MessageEmbed{
		Title:       d.t(c, "afk.cleared_title", nil),
		Description: d.t(c, "afk.welcome_back", nil),
		Color:       d.color(),
	}), nil
}

// Mention is a user mentioned in a message.
type Mention struct {
	ID   string
	Name string
}

// MessageInfo is the part of an incoming chat message the AFK listener reads.
type MessageInfo struct {
	GuildID  string
	AuthorID string
	Bot      bool
	Mentions []Mention
}

// AFKNotes is run for every guild message. It clears the author's own AFK
// status and reports the status of mentioned members who are away. The
// returned embeds are posted to the message's channel; the first one is the
// author's welcome back when Cleared is true.
func (d *Deps) AFKNotes(ctx context.Context, msg MessageInfo) (notes []*discordgo.MessageEmbed, cleared bool) {
	if msg.Bot || msg.GuildID == "" {
		return nil, false
	}
	log := utils.Module("afk")
	now := d.now()

	if status, err := d.Store.Members().ClearAFK(ctx, msg.AuthorID); err == nil {
		lang := d.Tr.UserLanguage(ctx, msg.AuthorID)
		notes = append(notes, &discordgo.MessageEmbed{
			Title:       d.Tr.Translate(lang, "afk.cleared_title", nil),
			Description: d.Tr.Translate(lang, "afk.welcome_back_duration", i18n.Params{"duration": FormatHM(now.Sub(status.SetAt.Time))}),
			Color:       d.color(),
		})
		cleared = true
	} else if !errors.Is(err, database.ErrNotFound) {
		log.Warn().Err(err).Str("user", msg.AuthorID).Msg("Failed to clear AFK status")
	}

	seen := make(map[string]bool, len(msg.Mentions))
	for _, m := range msg.Mentions {
		if m.ID == msg.AuthorID || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		status, err := d.Store.Members().GetAFK(ctx, m.ID)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				log.Warn().Err(err).Str("user", m.ID).Msg("Failed to read AFK status")
			}
			continue
		}
		lang := d.Tr.UserLanguage(ctx, msg.AuthorID)
		notes = append(notes, &discordgo.MessageEmbed{
			Title:       d.Tr.Translate(lang, "afk.is_afk", i18n.Params{"user": m.Name}),
			Description: "**" + status.Message + "**",
			Color:       d.color(),
			Footer: &discordgo.MessageEmbedFooter{
				Text: d.Tr.Translate(lang, "afk.afk_for", i18n.Params{"duration": FormatHM(now.Sub(status.SetAt.Time))}),
			},
		})
	}
	return notes, cleared
}

type RepArgs struct {
	TargetID  string
	TargetBot bool
	Reason    string
}

// Rep gives a reputation point, at most once per RepCooldown per giver.
func (d *Deps) Rep(ctx context.Context, c Caller, args RepArgs) (*Reply, error) {
	if args.TargetID == c.UserID || args.TargetBot {
		return nil, userErr("rep.invalid_target", nil, nil)
	}
	now := d.now()
	points, retryAt, err := d.Store.Members().GiveRep(ctx, c.UserID, args.TargetID, now, RepCooldown)
	if errors.Is(err, database.ErrOnCooldown) {
		return nil, userErr("rep.cooldown", i18n.Params{"remaining": FormatHM(retryAt.Sub(now))}, err)
	}
	if err != nil {
		return nil, err
	}

	desc := d.t(c, "rep.given_description", i18n.Params{"giver": "<@" + c.UserID + ">", "user": "<@" + args.TargetID + ">"})
	if reason := strings.TrimSpace(args.Reason); reason != "" {
		desc += " " + d.t(c, "rep.for_reason", i18n.Params{"reason": reason})
	}
	return embedReply(&discordgo.MessageEmbed{
		Title:       d.t(c, "rep.given_title", nil),
		Description: desc,
		Color:       d.color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: d.t(c, "rep.total", nil), Value: fmt.Sprint(points), Inline: true},
		},
	}), nil
}

type LanguageArgs struct {
	Code    string
	ShowAll bool
}

// Language shows or changes the caller's language preference.
func (d *Deps) Language(ctx context.Context, c Caller, args LanguageArgs) (*Reply, error) {
	code := strings.ToLower(strings.TrimSpace(args.Code))
	available := d.Tr.Languages()

	if code == "" {
		current := d.Tr.UserLanguage(ctx, c.UserID)
		lang := Caller{Lang: current}
		e := &discordgo.MessageEmbed{
			Title: d.emoji("menu") + d.t(lang, "language.embed_title", nil),
			Color: d.color(),
			Fields: []*discordgo.MessageEmbedField{
				{Name: d.emoji("tick") + d.t(lang, "language.current_field", nil), Value: "`" + current + "`"},
			},
			Footer: &discordgo.MessageEmbedFooter{Text: d.t(lang, "language.change_hint", nil)},
		}
		value := d.t(lang, "language.show_all_hint", i18n.Params{"count": len(available)})
		if args.ShowAll {
			lines := make([]string, 0, len(available))
			for _, l := range available {
				marker := d.Config.Emoji("right")
				if l == current {
					marker = d.Config.Emoji("tick")
				}
				lines = append(lines, strings.TrimSpace(fmt.Sprintf("%s `%s` %s", marker, l, d.languageName(lang, l))))
			}
			value = strings.Join(lines, "\n")
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name: d.emoji("info") + d.t(lang, "language.available_field", nil), Value: value,
		})
		return &Reply{Embeds: []*discordgo.MessageEmbed{e}, Ephemeral: true}, nil
	}

	if !d.Tr.HasLanguage(code) {
		return nil, userErr("language.unsupported", i18n.Params{"available": strings.Join(available, ", ")}, nil)
	}
	if err := d.Store.Members().SetLanguage(ctx, c.UserID, code); err != nil {
		return nil, err
	}
	// confirm in the newly chosen language
	lang := Caller{Lang: code}
	return &Reply{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       d.emoji("tick") + d.t(lang, "language.embed_title", nil),
			Description: d.t(lang, "language.set_success", i18n.Params{"language": code}),
			Color:       d.color(),
		}},
		Ephemeral: true,
	}, nil
}

func (d *Deps) languageName(c Caller, code string) string {
	key := "language.names." + code
	if name := d.t(c, key, nil); name != key {
		return name
	}
	return code
}
