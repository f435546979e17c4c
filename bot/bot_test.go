package bot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"orion-bot/model"
	"orion-bot/utils/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	store, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &model.Config{
		BotToken:           "token",
		BotName:            "Orion",
		DefaultLanguage:    "en",
		SweepInterval:      5 * time.Second,
		SweepRecordTimeout: time.Second,
		AutoUnlockLog:      true,
	}
	b, err := New(cfg, store)
	require.NoError(t, err)
	return b
}

func TestNewWiresDeps(t *testing.T) {
	b := newTestBot(t)

	assert.Same(t, b.GetConfig(), b.Deps.Config)
	assert.True(t, b.Deps.Tr.HasLanguage("es"))
	assert.Empty(t, b.BotID())

	b.SetBotID("99")
	assert.Equal(t, "99", b.Deps.BotID())
}

func TestSchedulerRearmsAndStops(t *testing.T) {
	b := newTestBot(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	require.NoError(t, b.Store.Reminders().Insert(ctx, &model.Reminder{
		UserID: "u1", ChannelID: "c1", Message: "later",
		RemindAt: model.NewUnixTime(future), CreatedAt: model.NewUnixTime(time.Now()),
	}))
	require.NoError(t, b.Store.Schedules().Insert(ctx, &model.Schedule{
		UserID: "u1", ChannelID: "c1", Title: "event",
		ScheduledAt: model.NewUnixTime(future), CreatedAt: model.NewUnixTime(time.Now()),
	}))

	b.scheduler.Start(ctx)
	assert.Equal(t, 1, b.Deps.Reminders.Pending())
	assert.Equal(t, 1, b.Deps.Schedules.Pending())

	b.scheduler.Stop()
	assert.Equal(t, 0, b.Deps.Reminders.Pending())

	// stopping keeps the records for the next start
	pending, err := b.Store.Reminders().Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
