package moderation

import (
	"context"
	"testing"
	"time"

	"orion-bot/i18n"
	"orion-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotes(t *testing.T) *Notes {
	t.Helper()
	tr, err := i18n.New("en", nil)
	require.NoError(t, err)
	return NewNotes(tr, 0x5865F2)
}

func TestLockExpiryResolve(t *testing.T) {
	for _, logAuto := range []bool{true, false} {
		m, p, store := newLockFixture(t)
		ctx := context.Background()
		modlog := NewModLog(p, store.Settings())
		logs := "logs"
		_, err := store.Settings().Update(ctx, guildID, model.ModerationSettingsUpdate{LogsChannelID: &logs})
		require.NoError(t, err)

		expiry := NewLockExpiry(m, modlog, newTestNotes(t), p, func() string { return "en" }, logAuto)

		expires := time.Now().Add(-time.Second)
		_, err = m.ApplyLock(ctx, LockRequest{GuildID: guildID, ChannelID: channelID, ModeratorID: modID, ExpiresAt: &expires})
		require.NoError(t, err)
		due, err := store.Locks().Due(ctx, time.Now())
		require.NoError(t, err)
		require.Len(t, due, 1)

		require.NoError(t, expiry.Resolve(ctx, due[0]))
		require.Len(t, p.sentTo(channelID), 1)
		assert.NotEmpty(t, p.sentTo(channelID)[0].Embed.Description)
		if logAuto {
			assert.Len(t, p.sentTo(logs), 1)
		} else {
			assert.Empty(t, p.sentTo(logs))
		}

		// Resolving the same record again is a no-op.
		require.NoError(t, expiry.Resolve(ctx, due[0]))
		assert.Len(t, p.sentTo(channelID), 1)
	}
}

func TestModLogRespectsToggles(t *testing.T) {
	p := newFakePlatform(guildID, "owner")
	store := newTestStore(t)
	modlog := NewModLog(p, store.Settings())
	ctx := context.Background()
	notes := newTestNotes(t)
	entry := notes.Slowmode("en", channelID, 10, "", modID)

	// No channel configured.
	assert.False(t, modlog.Post(ctx, guildID, LogSlowmode, entry))
	_, err := modlog.Test(ctx, guildID, entry)
	assert.ErrorIs(t, err, ErrNoLogChannel)

	off := false
	settings, err := modlog.Setup(ctx, p, SetupRequest{GuildID: guildID, CreateChannel: true, LogSlowmode: &off})
	require.NoError(t, err)
	assert.Equal(t, "created-mod-logs", settings.LogsChannelID)
	created := p.channels["created-mod-logs"]
	require.NotNil(t, created)
	require.Len(t, created.PermissionOverwrites, 1)
	assert.Equal(t, guildID, created.PermissionOverwrites[0].ID)

	assert.False(t, modlog.Post(ctx, guildID, LogSlowmode, entry))
	assert.True(t, modlog.Post(ctx, guildID, LogLocks, entry))

	channel, err := modlog.Test(ctx, guildID, entry)
	require.NoError(t, err)
	assert.Equal(t, "created-mod-logs", channel)
	assert.Len(t, p.sentTo("created-mod-logs"), 2)

	// An empty setup only reads.
	unchanged, err := modlog.Setup(ctx, p, SetupRequest{GuildID: guildID})
	require.NoError(t, err)
	assert.Equal(t, settings, unchanged)
}

func TestNotesSlowmodeOff(t *testing.T) {
	notes := newTestNotes(t)
	e := notes.Slowmode("en", channelID, 0, "quiet", "")
	require.Len(t, e.Fields, 3)
	assert.NotEqual(t, "0s", e.Fields[1].Value)
	assert.Equal(t, "quiet", e.Fields[2].Value)
}
