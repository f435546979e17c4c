package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"orion-bot/i18n"
	"orion-bot/model"
	"orion-bot/moderation"
	"orion-bot/utils"
	"orion-bot/utils/database"

	"github.com/bwmarrin/discordgo"
)

type WarnArgs struct {
	TargetID   string
	Reason     string
	Attachment *model.Attachment
}

// Warn records a warning against a member, optionally DMing them.
func (d *Deps) Warn(ctx context.Context, c Caller, args WarnArgs) (*Reply, error) {
	if err := requirePermissions(c, discordgo.PermissionModerateMembers); err != nil {
		return nil, err
	}
	res, err := d.Warnings.Warn(ctx, moderation.WarnRequest{
		GuildID:     c.GuildID,
		ModeratorID: c.UserID,
		TargetID:    args.TargetID,
		BotID:       d.botID(),
		Reason:      args.Reason,
		Attachment:  args.Attachment,
	})
	if err != nil {
		return nil, err
	}
	w := res.Warning

	settings, err := d.ModLog.Settings(ctx, c.GuildID)
	if err != nil {
		settings = model.DefaultModerationSettings(c.GuildID)
	}
	if settings.NotifyDM {
		d.Warnings.NotifyMember(w.UserID, d.warningDM(ctx, c.GuildID, w, res.Total))
	}

	reply := embedReply(d.warningEmbed(c, w, res.Total))
	d.ModLog.Post(ctx, c.GuildID, moderation.LogWarnings, d.warningEmbed(c, w, res.Total))
	return reply, nil
}

func (d *Deps) warningEmbed(c Caller, w *model.Warning, total int64) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: d.emoji("moderation") + d.t(c, "moderation.warn_success_title", nil),
		Color: d.color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: d.t(c, "generic.case", nil), Value: fmt.Sprintf("#%d", w.CaseID), Inline: true},
			{Name: d.t(c, "generic.user", nil), Value: fmt.Sprintf("<@%s> (%s)", w.UserID, w.UserID), Inline: true},
			{Name: d.t(c, "generic.moderator", nil), Value: "<@" + w.ModeratorID + ">", Inline: true},
			{Name: d.t(c, "generic.when", nil), Value: moderation.RelativeTime(w.CreatedAt.Time), Inline: true},
			{Name: d.t(c, "generic.reason", nil), Value: w.Reason},
		},
	}
	if w.Attachment != nil && w.Attachment.URL != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:  d.t(c, "generic.attachment", nil),
			Value: fmt.Sprintf("[%s](%s)", w.Attachment.Filename, w.Attachment.URL),
		})
	}
	if total > 0 {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name: d.t(c, "moderation.total_warnings", nil), Value: strconv.FormatInt(total, 10), Inline: true,
		})
	}
	return e
}

// warningDM is written in the warned member's own language.
func (d *Deps) warningDM(ctx context.Context, guildID string, w *model.Warning, total int64) *discordgo.MessageEmbed {
	lang := d.Tr.UserLanguage(ctx, w.UserID)
	server := guildID
	if g, err := d.Platform.Guild(guildID, discordgo.WithContext(ctx)); err == nil && g.Name != "" {
		server = g.Name
	}
	return &discordgo.MessageEmbed{
		Title:       d.emoji("warning") + d.Tr.Translate(lang, "moderation.warning_dm_title", nil),
		Description: d.Tr.Translate(lang, "moderation.warning_dm_description", i18n.Params{"server": server}),
		Color:       d.color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: d.Tr.Translate(lang, "generic.reason", nil), Value: w.Reason},
			{Name: d.Tr.Translate(lang, "moderation.total_warnings", nil), Value: strconv.FormatInt(total, 10), Inline: true},
		},
	}
}

// WarningsList shows every warning a member has in this guild.
func (d *Deps) WarningsList(ctx context.Context, c Caller, userID string) (*Reply, error) {
	if err := requirePermissions(c, discordgo.PermissionModerateMembers); err != nil {
		return nil, err
	}
	list, err := d.Warnings.List(ctx, c.GuildID, userID)
	if err != nil {
		return nil, err
	}

	e := &discordgo.MessageEmbed{
		Title: d.emoji("moderation") + d.t(c, "moderation.warnings_for_title", i18n.Params{"user": "<@" + userID + ">"}),
		Color: d.color(),
	}
	if len(list) == 0 {
		e.Description = d.t(c, "moderation.warnings_none", nil)
	} else {
		lines := make([]string, 0, len(list))
		for _, w := range list {
			lines = append(lines, fmt.Sprintf("`#%d` • %s • %s: <@%s>\n%s: %s",
				w.CaseID, moderation.RelativeTime(w.CreatedAt.Time),
				d.t(c, "generic.moderator", nil), w.ModeratorID,
				d.t(c, "generic.reason", nil), utils.Truncate(w.Reason, 200)))
		}
		e.Description = utils.Truncate(strings.Join(lines, "\n\n"), 4000)
	}
	e.Fields = []*discordgo.MessageEmbedField{
		{Name: d.t(c, "moderation.total_warnings", nil), Value: strconv.Itoa(len(list)), Inline: true},
	}
	return embedReply(e), nil
}

func (d *Deps) caseNotFound(err error, caseID int64) error {
	if errors.Is(err, database.ErrNotFound) {
		return userErr("moderation.warnings_case_not_found", i18n.Params{"case": caseID}, err)
	}
	return err
}

// WarningsCase shows one warning by its case number.
func (d *Deps) WarningsCase(ctx context.Context, c Caller, caseID int64) (*Reply, error) {
	if err := requirePermissions(c, discordgo.PermissionModerateMembers); err != nil {
		return nil, err
	}
	w, err := d.Warnings.Case(ctx, c.GuildID, caseID)
	if err != nil {
		return nil, d.caseNotFound(err, caseID)
	}
	e := d.warningEmbed(c, w, 0)
	e.Title = d.emoji("moderation") + d.t(c, "moderation.warnings_case_title", i18n.Params{"case": w.CaseID})
	return embedReply(e), nil
}

// WarningsRemove deletes one warning. Its case number is not reused.
func (d *Deps) WarningsRemove(ctx context.Context, c Caller, caseID int64) (*Reply, error) {
	if err := requirePermissions(c, discordgo.PermissionModerateMembers); err != nil {
		return nil, err
	}
	if _, err := d.Warnings.Remove(ctx, c.GuildID, caseID); err != nil {
		return nil, d.caseNotFound(err, caseID)
	}
	e := &discordgo.MessageEmbed{
		Title:       d.emoji("moderation") + d.t(c, "moderation.warnings_removed_title", nil),
		Description: d.t(c, "moderation.warnings_removed_description", i18n.Params{"case": caseID}),
		Color:       d.color(),
	}
	d.ModLog.Post(ctx, c.GuildID, moderation.LogWarnings, d.withModerator(c, e))
	return embedReply(e), nil
}

// WarningsClear deletes all of a member's warnings.
func (d *Deps) WarningsClear(ctx context.Context, c Caller, userID string) (*Reply, error) {
	if err := requirePermissions(c, discordgo.PermissionModerateMembers); err != nil {
		return nil, err
	}
	n, err := d.Warnings.Clear(ctx, c.GuildID, userID)
	if err != nil {
		return nil, err
	}
	e := &discordgo.MessageEmbed{
		Title:       d.emoji("moderation") + d.t(c, "moderation.warnings_cleared_title", nil),
		Description: d.t(c, "moderation.warnings_cleared_description", i18n.Params{"user": "<@" + userID + ">", "count": n}),
		Color:       d.color(),
	}
	d.ModLog.Post(ctx, c.GuildID, moderation.LogWarnings, d.withModerator(c, e))
	return embedReply(e), nil
}

// WarningsEdit replaces a warning's reason.
func (d *Deps) WarningsEdit(ctx context.Context, c Caller, caseID int64, reason string) (*Reply, error) {
	if err := requirePermissions(c, discordgo.PermissionModerateMembers); err != nil {
		return nil, err
	}
	w, err := d.Warnings.Edit(ctx, c.GuildID, caseID, reason)
	if err != nil {
		return nil, d.caseNotFound(err, caseID)
	}
	e := &discordgo.MessageEmbed{
		Title:       d.emoji("moderation") + d.t(c, "moderation.warnings_edited_title", nil),
		Description: d.t(c, "moderation.warnings_edited_description", i18n.Params{"case": caseID}),
		Color:       d.color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: d.t(c, "generic.reason", nil), Value: w.Reason},
		},
	}
	d.ModLog.Post(ctx, c.GuildID, moderation.LogWarnings, d.withModerator(c, e))
	return embedReply(e), nil
}

// withModerator copies e for the moderation log with the acting moderator added.
func (d *Deps) withModerator(c Caller, e *discordgo.MessageEmbed) *discordgo.MessageEmbed {
	cp := *e
	cp.Fields = append(append([]*discordgo.MessageEmbedField(nil), e.Fields...), &discordgo.MessageEmbedField{
		Name: d.t(c, "generic.moderator", nil), Value: "<@" + c.UserID + ">", Inline: true,
	})
	return &cp
}
