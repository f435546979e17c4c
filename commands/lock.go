package commands

import (
	"context"
	"errors"
	"time"

	"orion-bot/i18n"
	"orion-bot/moderation"
	"orion-bot/utils"

	"github.com/bwmarrin/discordgo"
)

const lockPermissions = discordgo.PermissionManageChannels | discordgo.PermissionManageRoles

type LockArgs struct {
	Duration string
	Reason   string
}

// lockDeadline interprets /lock's first option. A duration that does not
// parse is taken as the reason when no reason was given, so "/lock spam"
// works; with an explicit reason it is an error.
func lockDeadline(args LockArgs, now time.Time) (expiresAt *time.Time, reason string, err error) {
	if args.Duration == "" {
		return nil, args.Reason, nil
	}
	at, err := utils.ResolveDeadline(args.Duration, now)
	switch {
	case err == nil:
		return &at, args.Reason, nil
	case errors.Is(err, utils.ErrUnparseableTime) && args.Reason == "":
		return nil, args.Duration, nil
	}
	return nil, "", err
}

// Lock denies Send Messages in the caller's channel for every role below the
// caller's highest role.
func (d *Deps) Lock(ctx context.Context, c Caller, args LockArgs) (*Reply, error) {
	if err := requirePermissions(c, lockPermissions); err != nil {
		return nil, err
	}
	expiresAt, reason, err := lockDeadline(args, d.now())
	if err != nil {
		return nil, err
	}

	res, err := d.Locks.ApplyLock(ctx, moderation.LockRequest{
		GuildID:     c.GuildID,
		ChannelID:   c.ChannelID,
		ModeratorID: c.UserID,
		Reason:      reason,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return nil, err
	}

	reply := embedReply(d.Notes.Locked(c.Lang, c.ChannelID, reason, expiresAt, ""))
	if len(res.Failed) > 0 {
		reply.Content = d.t(c, "moderation.partial_roles", i18n.Params{"roles": moderation.Failures(res.Failed)})
	}
	d.ModLog.Post(ctx, c.GuildID, moderation.LogLocks, d.Notes.Locked(c.Lang, c.ChannelID, reason, expiresAt, c.UserID))
	return reply, nil
}

type UnlockArgs struct {
	Reason string
}

// Unlock restores the caller's channel and posts a note into it.
func (d *Deps) Unlock(ctx context.Context, c Caller, args UnlockArgs) (*Reply, error) {
	if err := requirePermissions(c, lockPermissions); err != nil {
		return nil, err
	}
	res, err := d.Locks.ApplyUnlock(ctx, moderation.UnlockRequest{
		GuildID:     c.GuildID,
		ChannelID:   c.ChannelID,
		ModeratorID: c.UserID,
		Reason:      args.Reason,
	})
	if err != nil {
		return nil, err
	}

	reply := embedReply(d.Notes.Unlocked(c.Lang, c.ChannelID, args.Reason, ""))
	if len(res.Failed) > 0 {
		reply.Content = d.t(c, "moderation.partial_roles", i18n.Params{"roles": moderation.Failures(res.Failed)})
	}
	if _, err := d.Platform.ChannelMessageSendEmbed(c.ChannelID, d.Notes.UnlockedNote(c.Lang, false), discordgo.WithContext(ctx)); err != nil {
		log := utils.Module("commands")
		log.Warn().Err(err).Str("channel", c.ChannelID).Msg("Failed to post unlock note")
	}
	d.ModLog.Post(ctx, c.GuildID, moderation.LogLocks, d.Notes.Unlocked(c.Lang, c.ChannelID, args.Reason, c.UserID))
	return reply, nil
}

type SlowmodeArgs struct {
	Duration string
	Reason   string
}

// Slowmode sets the caller's channel per-user message delay.
func (d *Deps) Slowmode(ctx context.Context, c Caller, args SlowmodeArgs) (*Reply, error) {
	if err := requirePermissions(c, discordgo.PermissionManageChannels); err != nil {
		return nil, err
	}
	seconds, ok := moderation.ParseSlowmode(args.Duration)
	if !ok {
		return nil, userErr("errors.invalid_duration_format", nil, nil)
	}
	if err := moderation.SetSlowmode(ctx, d.Platform, c.ChannelID, seconds, args.Reason); err != nil {
		return nil, err
	}
	d.ModLog.Post(ctx, c.GuildID, moderation.LogSlowmode, d.Notes.Slowmode(c.Lang, c.ChannelID, seconds, args.Reason, c.UserID))
	return embedReply(d.Notes.Slowmode(c.Lang, c.ChannelID, seconds, args.Reason, "")), nil
}
