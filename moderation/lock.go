package moderation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"orion-bot/metrics"
	"orion-bot/model"
	"orion-bot/utils"
	"orion-bot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

var (
	// ErrAlreadyLocked is returned when locking a channel that has an active lock.
	ErrAlreadyLocked = errors.New("channel is already locked")
	// ErrLockNotActive is returned when an expired lock was already released by someone else.
	ErrLockNotActive = errors.New("lock is no longer active")
	// ErrNothingToLock is returned when the moderator outranks no role in the guild.
	ErrNothingToLock = errors.New("no roles below the moderator to lock")
)

// ExpiredReason is recorded on audit entries written by automatic expiry.
const ExpiredReason = "Lock expired"

const sendPermission = int64(discordgo.PermissionSendMessages)

// LockStore is the persistence the lock manager needs.
type LockStore interface {
	Insert(ctx context.Context, rec *model.LockRecord) (int64, error)
	Release(ctx context.Context, guildID, channelID string, at time.Time, auto bool) (*model.LockRecord, error)
	ReleaseByID(ctx context.Context, id int64, at time.Time, auto bool) (*model.LockRecord, error)
}

type LockRequest struct {
	GuildID     string
	ChannelID   string
	ModeratorID string
	Reason      string
	ExpiresAt   *time.Time
}

type UnlockRequest struct {
	GuildID     string
	ChannelID   string
	ModeratorID string
	Reason      string
}

// RoleFailure is a role whose overwrite could not be changed.
type RoleFailure struct {
	RoleID string
	Err    error
}

type LockResult struct {
	Record *model.LockRecord
	Failed []RoleFailure
}

type UnlockResult struct {
	// Released is the lock that was deactivated, nil when the channel had none.
	Released *model.LockRecord
	Audit    *model.LockRecord
	Failed   []RoleFailure
}

// LockManager applies and reverts channel locks. A lock denies the send
// permission for every role ranked strictly below the moderator's highest
// role and remembers each role's previous tri-state so unlock can restore it.
type LockManager struct {
	platform Platform
	store    LockStore
	channels utils.KeyedMutex
	now      func() time.Time
	botID    func() string
	log      zerolog.Logger
}

// NewLockManager builds a manager. botID names the actor recorded on automatic
// releases and may be nil.
func NewLockManager(platform Platform, store LockStore, botID func() string) *LockManager {
	if botID == nil {
		botID = func() string { return "" }
	}
	return &LockManager{
		platform: platform,
		store:    store,
		now:      time.Now,
		botID:    botID,
		log:      utils.Module("lock"),
	}
}

// ApplyLock locks a channel. The active record is persisted before any
// permission is touched, so a concurrent second lock fails with
// ErrAlreadyLocked without changing anything.
func (m *LockManager) ApplyLock(ctx context.Context, req LockRequest) (*LockResult, error) {
	unlock := m.channels.Lock(req.ChannelID)
	defer unlock()

	channel, err := m.platform.Channel(req.ChannelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, platformErr("fetch channel", err)
	}
	targets, err := m.rolesBelowModerator(ctx, req.GuildID, req.ModeratorID)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, ErrNothingToLock
	}

	captured := make(model.RoleOverwrites, 0, len(targets))
	for _, role := range targets {
		captured = append(captured, model.RoleOverwrite{
			RoleID:   role.ID,
			Previous: sendState(findOverwrite(channel, role.ID)),
		})
	}

	rec := &model.LockRecord{
		GuildID:            req.GuildID,
		ChannelID:          req.ChannelID,
		ModeratorID:        req.ModeratorID,
		Action:             model.LockActionLock,
		Reason:             req.Reason,
		PreviousOverwrites: captured,
		CreatedAt:          model.NewUnixTime(m.now()),
		ExpiresAt:          model.UnixTimePtr(req.ExpiresAt),
		Active:             true,
	}
	if _, err := m.store.Insert(ctx, rec); err != nil {
		metrics.LockActionsTotal.WithLabelValues("lock", "error").Inc()
		if errors.Is(err, database.ErrActiveLockExists) {
			return nil, ErrAlreadyLocked
		}
		return nil, err
	}

	result := &LockResult{Record: rec}
	opts := requestOptions(ctx, req.Reason)
	for _, ro := range captured {
		allow, deny := currentBits(findOverwrite(channel, ro.RoleID))
		allow &^= sendPermission
		deny |= sendPermission
		if err := m.platform.ChannelPermissionSet(req.ChannelID, ro.RoleID, discordgo.PermissionOverwriteTypeRole, allow, deny, opts...); err != nil {
			result.Failed = append(result.Failed, m.roleFailed("lock", req.ChannelID, ro.RoleID, err))
		}
	}

	metrics.LockActionsTotal.WithLabelValues("lock", "ok").Inc()
	m.log.Info().Str("guild", req.GuildID).Str("channel", req.ChannelID).Int64("record", rec.ID).
		Int("roles", len(captured)).Int("failed", len(result.Failed)).Msg("Channel locked")
	return result, nil
}

// ApplyUnlock releases the channel's active lock and restores every captured
// overwrite. Without an active lock only @everyone is reset to inherit. An
// unlock audit record is written in both cases.
func (m *LockManager) ApplyUnlock(ctx context.Context, req UnlockRequest) (*UnlockResult, error) {
	unlock := m.channels.Lock(req.ChannelID)
	defer unlock()

	released, err := m.store.Release(ctx, req.GuildID, req.ChannelID, m.now(), false)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		metrics.LockActionsTotal.WithLabelValues("unlock", "error").Inc()
		return nil, err
	}
	return m.restore(ctx, req.GuildID, req.ChannelID, req.ModeratorID, req.Reason, released, false)
}

// ReleaseExpired resolves a lock whose expiry has passed, using the same
// restore path as a manual unlock. It returns ErrLockNotActive if the lock was
// released concurrently.
func (m *LockManager) ReleaseExpired(ctx context.Context, rec model.LockRecord) (*UnlockResult, error) {
	unlock := m.channels.Lock(rec.ChannelID)
	defer unlock()

	released, err := m.store.ReleaseByID(ctx, rec.ID, m.now(), true)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrLockNotActive
	}
	if err != nil {
		metrics.LockActionsTotal.WithLabelValues("expire", "error").Inc()
		return nil, err
	}
	return m.restore(ctx, rec.GuildID, rec.ChannelID, m.botID(), ExpiredReason, released, true)
}

func (m *LockManager) restore(ctx context.Context, guildID, channelID, actorID, reason string, released *model.LockRecord, auto bool) (*UnlockResult, error) {
	result := &UnlockResult{Released: released}

	// @everyone is only reset when there was no lock to restore from.
	targets := []model.RoleOverwrite{{RoleID: guildID, Previous: model.OverwriteInherit}}
	if released != nil {
		targets = released.PreviousOverwrites
	}

	channel, err := m.platform.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		// Without the current overwrites nothing can be restored safely;
		// every role counts as failed and the audit record is still written.
		for _, t := range targets {
			result.Failed = append(result.Failed, m.roleFailed("unlock", channelID, t.RoleID, err))
		}
	} else {
		opts := requestOptions(ctx, reason)
		for _, t := range targets {
			if err := m.restoreRole(channel, t, opts); err != nil {
				result.Failed = append(result.Failed, m.roleFailed("unlock", channelID, t.RoleID, err))
			}
		}
	}

	audit := &model.LockRecord{
		GuildID:      guildID,
		ChannelID:    channelID,
		ModeratorID:  actorID,
		Action:       model.LockActionUnlock,
		Reason:       reason,
		CreatedAt:    model.NewUnixTime(m.now()),
		AutoReleased: auto,
	}
	if _, err := m.store.Insert(ctx, audit); err != nil {
		m.log.Error().Err(err).Str("channel", channelID).Msg("Failed to write unlock audit record")
	} else {
		result.Audit = audit
	}

	action := "unlock"
	if auto {
		action = "expire"
	}
	metrics.LockActionsTotal.WithLabelValues(action, "ok").Inc()
	m.log.Info().Str("guild", guildID).Str("channel", channelID).Bool("auto", auto).
		Bool("had_lock", released != nil).Int("failed", len(result.Failed)).Msg("Channel unlocked")
	return result, nil
}

// restoreRole puts the send bit back to its captured state. Other bits on the
// overwrite are left alone; an overwrite left with no bits is deleted.
func (m *LockManager) restoreRole(channel *discordgo.Channel, t model.RoleOverwrite, opts []discordgo.RequestOption) error {
	existing := findOverwrite(channel, t.RoleID)
	allow, deny := currentBits(existing)
	allow &^= sendPermission
	deny &^= sendPermission
	switch t.Previous {
	case model.OverwriteAllow:
		allow |= sendPermission
	case model.OverwriteDeny:
		deny |= sendPermission
	}

	if allow == 0 && deny == 0 {
		if existing == nil {
			return nil
		}
		return m.platform.ChannelPermissionDelete(channel.ID, t.RoleID, opts...)
	}
	return m.platform.ChannelPermissionSet(channel.ID, t.RoleID, discordgo.PermissionOverwriteTypeRole, allow, deny, opts...)
}

func (m *LockManager) roleFailed(op, channelID, roleID string, err error) RoleFailure {
	metrics.OverwriteFailuresTotal.Inc()
	m.log.Warn().Err(err).Str("op", op).Str("channel", channelID).Str("role", roleID).Msg("Failed to edit role overwrite")
	return RoleFailure{RoleID: roleID, Err: platformErr("edit overwrite", err)}
}

// rolesBelowModerator lists the guild's roles ranked strictly below the
// moderator's highest role, highest first.
func (m *LockManager) rolesBelowModerator(ctx context.Context, guildID, moderatorID string) ([]*discordgo.Role, error) {
	roles, err := m.platform.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, platformErr("fetch roles", err)
	}
	member, err := m.platform.GuildMember(guildID, moderatorID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, platformErr("fetch moderator", err)
	}
	top := topRole(guildID, member, roles)

	var below []*discordgo.Role
	for _, r := range roles {
		if r.ID != top.ID && roleAbove(top, r) {
			below = append(below, r)
		}
	}
	sort.SliceStable(below, func(i, j int) bool { return roleAbove(below[i], below[j]) })
	return below, nil
}

func findOverwrite(channel *discordgo.Channel, roleID string) *discordgo.PermissionOverwrite {
	for _, o := range channel.PermissionOverwrites {
		if o.ID == roleID && o.Type == discordgo.PermissionOverwriteTypeRole {
			return o
		}
	}
	return nil
}

func currentBits(o *discordgo.PermissionOverwrite) (allow, deny int64) {
	if o == nil {
		return 0, 0
	}
	return o.Allow, o.Deny
}

func sendState(o *discordgo.PermissionOverwrite) model.OverwriteState {
	switch {
	case o == nil:
		return model.OverwriteInherit
	case o.Deny&sendPermission != 0:
		return model.OverwriteDeny
	case o.Allow&sendPermission != 0:
		return model.OverwriteAllow
	}
	return model.OverwriteInherit
}

// Failures renders role failures for a log line.
func Failures(failed []RoleFailure) string {
	mentions := make([]string, 0, len(failed))
	for _, f := range failed {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", f.RoleID))
	}
	return strings.Join(mentions, ", ")
}
