package moderation

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"orion-bot/model"
	"orion-bot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guildID   = "100"
	channelID = "900"
	modID     = "mod"
)

const (
	viewBit   = int64(discordgo.PermissionViewChannel)
	attachBit = int64(discordgo.PermissionAttachFiles)
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "mod.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// newLockFixture builds a guild where the moderator holds role 500 and
//
//	600 is above the moderator and must never be touched
//	400 explicitly allows sending (plus attach files)
//	300 has no overwrite at all
//	200 explicitly denies sending
//	@everyone only allows viewing
func newLockFixture(t *testing.T) (*LockManager, *fakePlatform, *database.Store) {
	t.Helper()
	p := newFakePlatform(guildID, "owner")
	p.addRole("600", 6)
	p.addRole("500", 5)
	p.addRole("400", 4)
	p.addRole("300", 3)
	p.addRole("200", 2)
	p.addMember(modID, false, "500")
	p.addMember("bot", true, "600")
	p.addChannel(channelID,
		&discordgo.PermissionOverwrite{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Allow: viewBit},
		&discordgo.PermissionOverwrite{ID: "400", Type: discordgo.PermissionOverwriteTypeRole, Allow: sendPermission | attachBit},
		&discordgo.PermissionOverwrite{ID: "200", Type: discordgo.PermissionOverwriteTypeRole, Deny: sendPermission},
		&discordgo.PermissionOverwrite{ID: "600", Type: discordgo.PermissionOverwriteTypeRole, Allow: sendPermission},
	)

	store := newTestStore(t)
	m := NewLockManager(p, store.Locks(), func() string { return "bot" })
	return m, p, store
}

func snapshot(p *fakePlatform, roles ...string) map[string]*discordgo.PermissionOverwrite {
	out := make(map[string]*discordgo.PermissionOverwrite, len(roles))
	for _, r := range roles {
		out[r] = p.overwrite(channelID, r)
	}
	return out
}

var allRoles = []string{guildID, "200", "300", "400", "500", "600"}

func TestApplyLockDeniesRolesBelowModerator(t *testing.T) {
	m, p, _ := newLockFixture(t)

	res, err := m.ApplyLock(context.Background(), LockRequest{GuildID: guildID, ChannelID: channelID, ModeratorID: modID, Reason: "raid"})
	require.NoError(t, err)
	assert.Empty(t, res.Failed)

	captured := map[string]model.OverwriteState{}
	for _, ro := range res.Record.PreviousOverwrites {
		captured[ro.RoleID] = ro.Previous
	}
	assert.Equal(t, map[string]model.OverwriteState{
		"400":   model.OverwriteAllow,
		"300":   model.OverwriteInherit,
		"200":   model.OverwriteDeny,
		guildID: model.OverwriteInherit,
	}, captured)

	for _, role := range []string{guildID, "200", "300", "400"} {
		o := p.overwrite(channelID, role)
		require.NotNil(t, o, role)
		assert.NotZero(t, o.Deny&sendPermission, role)
		assert.Zero(t, o.Allow&sendPermission, role)
	}
	// Unrelated bits survive.
	assert.Equal(t, attachBit, p.overwrite(channelID, "400").Allow)
	assert.Equal(t, viewBit, p.overwrite(channelID, guildID).Allow)

	// The moderator's own role and anything above it is untouched.
	assert.Nil(t, p.overwrite(channelID, "500"))
	assert.Equal(t, sendPermission, p.overwrite(channelID, "600").Allow)
}

func TestLockThenUnlockRestoresExactState(t *testing.T) {
	m, p, store := newLockFixture(t)
	ctx := context.Background()
	before := snapshot(p, allRoles...)

	_, err := m.ApplyLock(ctx, LockRequest{GuildID: guildID, ChannelID: channelID, ModeratorID: modID})
	require.NoError(t, err)

	res, err := m.ApplyUnlock(ctx, UnlockRequest{GuildID: guildID, ChannelID: channelID, ModeratorID: modID, Reason: "calm"})
	require.NoError(t, err)
	assert.Empty(t, res.Failed)
	require.NotNil(t, res.Released)
	assert.False(t, res.Released.Active)
	assert.NotNil(t, res.Released.ReleasedAt)

	assert.Equal(t, before, snapshot(p, allRoles...))

	// Role 300 had no overwrite and must not gain one.
	assert.Nil(t, p.overwrite(channelID, "300"))

	history, err := store.Locks().History(ctx, guildID, channelID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.LockActionUnlock, history[0].Action)
	assert.Empty(t, history[0].PreviousOverwrites)
	assert.Equal(t, "calm", history[0].Reason)
	assert.Equal(t, model.LockActionLock, history[1].Action)
	assert.False(t, history[1].Active)
}

func TestApplyLockRejectsSecondLock(t *testing.T) {
	m, p, store := newLockFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.ApplyLock(ctx, LockRequest{GuildID: guildID, ChannelID: channelID, ModeratorID: modID})
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrAlreadyLocked):
			rejected++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	// Only the winning lock edited permissions.
	assert.Equal(t, 4, p.permCalls)

	active, err := store.Locks().Active(ctx, guildID, channelID)
	require.NoError(t, err)
	// The stored capture is the pre-lock state, not the locked one.
	for _, ro := range active.PreviousOverwrites {
		if ro.RoleID == "400" {
			assert.Equal(t, model.OverwriteAllow, ro.Previous)
		}
	}
}

func TestApplyUnlockWithoutLockResetsEveryone(t *testing.T) {
	m, p, store := newLockFixture(t)
	ctx := context.Background()
	p.channels[channelID].PermissionOverwrites[0].Deny = sendPermission

	res, err := m.ApplyUnlock(ctx, UnlockRequest{GuildID: guildID, ChannelID: channelID, ModeratorID: modID})
	require.NoError(t, err)
	assert.Nil(t, res.Released)
	require.NotNil(t, res.Audit)

	everyone := p.overwrite(channelID, guildID)
	require.NotNil(t, everyone)
	assert.Zero(t, everyone.Deny&sendPermission)
	assert.Equal(t, viewBit, everyone.Allow)
	// Other roles keep their explicit values.
	assert.Equal(t, sendPermission, p.overwrite(channelID, "200").Deny)

	history, err := store.Locks().History(ctx, guildID, channelID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.LockActionUnlock, history[0].Action)
}

func TestApplyLockContinuesPastRoleFailures(t *testing.T) {
	m, p, _ := newLockFixture(t)
	p.failRoles["300"] = true

	res, err := m.ApplyLock(context.Background(), LockRequest{GuildID: guildID, ChannelID: channelID, ModeratorID: modID})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "300", res.Failed[0].RoleID)
	assert.ErrorIs(t, res.Failed[0].Err, ErrPlatform)

	for _, role := range []string{guildID, "200", "400"} {
		assert.NotZero(t, p.overwrite(channelID, role).Deny&sendPermission, role)
	}
	assert.Equal(t, "<@&300>", Failures(res.Failed))
}

func TestReleaseExpiredUsesSameRestorePath(t *testing.T) {
	m, p, store := newLockFixture(t)
	ctx := context.Background()
	before := snapshot(p, allRoles...)

	expires := time.Now().Add(-time.Second)
	res, err := m.ApplyLock(ctx, LockRequest{GuildID: guildID, ChannelID: channelID, ModeratorID: modID, ExpiresAt: &expires})
	require.NoError(t, err)

	due, err := store.Locks().Due(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, res.Record.ID, due[0].ID)

	unlocked, err := m.ReleaseExpired(ctx, due[0])
	require.NoError(t, err)
	assert.True(t, unlocked.Released.AutoReleased)
	assert.True(t, unlocked.Audit.AutoReleased)
	assert.Equal(t, "bot", unlocked.Audit.ModeratorID)
	assert.Equal(t, ExpiredReason, unlocked.Audit.Reason)
	assert.Equal(t, before, snapshot(p, allRoles...))

	// A manual unlock or second sweep that lost the race changes nothing.
	_, err = m.ReleaseExpired(ctx, due[0])
	assert.ErrorIs(t, err, ErrLockNotActive)
}

func TestModeratorWithoutRolesLocksNothing(t *testing.T) {
	m, p, store := newLockFixture(t)
	p.addMember("plain", false)

	_, err := m.ApplyLock(context.Background(), LockRequest{GuildID: guildID, ChannelID: channelID, ModeratorID: "plain"})
	assert.ErrorIs(t, err, ErrNothingToLock)
	assert.Zero(t, p.permCalls)

	_, err = store.Locks().Active(context.Background(), guildID, channelID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUnlockOfEmptySnapshotKeepsEveryone(t *testing.T) {
	m, p, store := newLockFixture(t)
	ctx := context.Background()
	p.channels[channelID].PermissionOverwrites[0].Deny = sendPermission
	before := snapshot(p, allRoles...)

	// an active lock that captured no roles
	_, err := store.Locks().Insert(ctx, &model.LockRecord{
		GuildID:     guildID,
		ChannelID:   channelID,
		ModeratorID: "plain",
		Action:      model.LockActionLock,
		CreatedAt:   model.NewUnixTime(time.Now()),
		Active:      true,
	})
	require.NoError(t, err)

	res, err := m.ApplyUnlock(ctx, UnlockRequest{GuildID: guildID, ChannelID: channelID, ModeratorID: modID})
	require.NoError(t, err)
	require.NotNil(t, res.Released)
	assert.Empty(t, res.Failed)
	assert.Zero(t, p.permCalls)
	assert.Equal(t, before, snapshot(p, allRoles...))
	assert.Equal(t, sendPermission, p.overwrite(channelID, guildID).Deny)
}

func TestRoleAboveTieBreak(t *testing.T) {
	a := &discordgo.Role{ID: "10", Position: 3}
	b := &discordgo.Role{ID: "9", Position: 3}
	c := &discordgo.Role{ID: "1", Position: 2}
	assert.True(t, roleAbove(b, a))
	assert.False(t, roleAbove(a, b))
	assert.True(t, roleAbove(a, c))
}
