package database

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"orion-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	store, err := Open(DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func activeLock(guildID, channelID string, expiresAt *time.Time) *model.LockRecord {
	return &model.LockRecord{
		GuildID:     guildID,
		ChannelID:   channelID,
		ModeratorID: "mod",
		Action:      model.LockActionLock,
		Reason:      "raid",
		PreviousOverwrites: model.RoleOverwrites{
			{RoleID: "r1", Previous: model.OverwriteAllow},
			{RoleID: "r2", Previous: model.OverwriteInherit},
			{RoleID: "r3", Previous: model.OverwriteDeny},
		},
		CreatedAt: model.NewUnixTime(testNow),
		ExpiresAt: model.UnixTimePtr(expiresAt),
		Active:    true,
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestLockStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	locks := newTestStore(t).Locks()

	expires := testNow.Add(time.Hour)
	rec := activeLock("g", "c", &expires)
	id, err := locks.Insert(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)

	got, err := locks.Active(ctx, "g", "c")
	require.NoError(t, err)
	assert.Equal(t, rec.PreviousOverwrites, got.PreviousOverwrites)
	assert.True(t, got.Active)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, expires.Equal(got.ExpiresAt.Time))
	assert.Nil(t, got.ReleasedAt)
}

func TestLockStoreSingleActiveUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	locks := newTestStore(t).Locks()

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = locks.Insert(ctx, activeLock("g", "c", nil))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrActiveLockExists)
	}
	assert.Equal(t, 1, succeeded)

	// Another channel is unaffected.
	_, err := locks.Insert(ctx, activeLock("g", "other", nil))
	assert.NoError(t, err)
}

func TestLockStoreReleaseOnce(t *testing.T) {
	ctx := context.Background()
	locks := newTestStore(t).Locks()

	_, err := locks.Insert(ctx, activeLock("g", "c", nil))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := locks.Release(ctx, "g", "c", testNow, false)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	released := 0
	for err := range results {
		if err == nil {
			released++
			continue
		}
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 1, released)

	_, err = locks.Active(ctx, "g", "c")
	assert.ErrorIs(t, err, ErrNotFound)

	// Released channels can be locked again.
	_, err = locks.Insert(ctx, activeLock("g", "c", nil))
	assert.NoError(t, err)
}

func TestLockStoreReleaseByIDStampsRecord(t *testing.T) {
	ctx := context.Background()
	locks := newTestStore(t).Locks()

	id, err := locks.Insert(ctx, activeLock("g", "c", nil))
	require.NoError(t, err)

	rec, err := locks.ReleaseByID(ctx, id, testNow, true)
	require.NoError(t, err)
	assert.False(t, rec.Active)
	assert.True(t, rec.AutoReleased)
	require.NotNil(t, rec.ReleasedAt)
	assert.True(t, testNow.Equal(rec.ReleasedAt.Time))

	_, err = locks.ReleaseByID(ctx, id, testNow, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLockStoreDue(t *testing.T) {
	ctx := context.Background()
	locks := newTestStore(t).Locks()

	past := testNow.Add(-time.Minute)
	future := testNow.Add(time.Minute)
	_, err := locks.Insert(ctx, activeLock("g", "expired", &past))
	require.NoError(t, err)
	_, err = locks.Insert(ctx, activeLock("g", "pending", &future))
	require.NoError(t, err)
	_, err = locks.Insert(ctx, activeLock("g", "forever", nil))
	require.NoError(t, err)
	releasedID, err := locks.Insert(ctx, activeLock("g", "released", &past))
	require.NoError(t, err)
	_, err = locks.ReleaseByID(ctx, releasedID, testNow, false)
	require.NoError(t, err)

	due, err := locks.Due(ctx, testNow)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "expired", due[0].ChannelID)
}

func TestLockStoreAuditRecordsDoNotConflict(t *testing.T) {
	ctx := context.Background()
	locks := newTestStore(t).Locks()

	for i := 0; i < 3; i++ {
		_, err := locks.Insert(ctx, &model.LockRecord{
			GuildID: "g", ChannelID: "c", ModeratorID: "mod",
			Action: model.LockActionUnlock, CreatedAt: model.NewUnixTime(testNow),
		})
		require.NoError(t, err)
	}
	history, err := locks.History(ctx, "g", "c", 10)
	require.NoError(t, err)
	assert.Len(t, history, 3)
	assert.Empty(t, history[0].PreviousOverwrites)
}

func TestNextCaseIDConcurrent(t *testing.T) {
	ctx := context.Background()
	warnings := newTestStore(t).Warnings()

	const workers = 20
	ids := make([]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := warnings.NextCaseID(ctx, "g")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id)
	}

	// Counters are per guild.
	id, err := warnings.NextCaseID(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestWarningCaseIDsNeverReused(t *testing.T) {
	ctx := context.Background()
	warnings := newTestStore(t).Warnings()

	first := &model.Warning{GuildID: "g", UserID: "u", ModeratorID: "m", Reason: "spam", CreatedAt: model.NewUnixTime(testNow)}
	require.NoError(t, warnings.Add(ctx, first))
	second := &model.Warning{GuildID: "g", UserID: "u", ModeratorID: "m", Reason: "spam again", CreatedAt: model.NewUnixTime(testNow),
		Attachment: &model.Attachment{ID: "a1", Filename: "proof.png", URL: "https://cdn.example/proof.png"}}
	require.NoError(t, warnings.Add(ctx, second))

	deleted, err := warnings.DeleteCase(ctx, "g", second.CaseID)
	require.NoError(t, err)
	assert.Equal(t, "proof.png", deleted.Attachment.Filename)

	third := &model.Warning{GuildID: "g", UserID: "u", ModeratorID: "m", Reason: "third", CreatedAt: model.NewUnixTime(testNow)}
	require.NoError(t, warnings.Add(ctx, third))
	assert.Equal(t, int64(3), third.CaseID)

	got, err := warnings.ByCase(ctx, "g", first.CaseID)
	require.NoError(t, err)
	assert.Nil(t, got.Attachment)

	edited, err := warnings.UpdateReason(ctx, "g", third.CaseID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Reason)

	n, err := warnings.CountUser(ctx, "g", "u")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	cleared, err := warnings.ClearUser(ctx, "g", "u")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	_, err = warnings.ByCase(ctx, "g", first.CaseID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReminderClaimOnce(t *testing.T) {
	ctx := context.Background()
	reminders := newTestStore(t).Reminders()

	r := &model.Reminder{UserID: "u", ChannelID: "c", Message: "stretch",
		RemindAt: model.NewUnixTime(testNow.Add(-time.Second)), CreatedAt: model.NewUnixTime(testNow.Add(-time.Minute))}
	require.NoError(t, reminders.Insert(ctx, r))
	require.NotZero(t, r.ID)

	due, err := reminders.Due(ctx, testNow)
	require.NoError(t, err)
	require.Len(t, due, 1)

	claimed, err := reminders.Claim(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "stretch", claimed.Message)

	_, err = reminders.Claim(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	pending, err := reminders.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestScheduleDueOrdering(t *testing.T) {
	ctx := context.Background()
	schedules := newTestStore(t).Schedules()

	for _, offset := range []time.Duration{-time.Minute, time.Minute, -time.Second} {
		require.NoError(t, schedules.Insert(ctx, &model.Schedule{
			UserID: "u", ChannelID: "c", Title: offset.String(),
			ScheduledAt: model.NewUnixTime(testNow.Add(offset)), CreatedAt: model.NewUnixTime(testNow),
		}))
	}

	due, err := schedules.Due(ctx, testNow)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Less(t, due[0].ID, due[1].ID)

	mine, err := schedules.ListByUser(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	ctx := context.Background()
	settings := newTestStore(t).Settings()

	got, err := settings.Get(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultModerationSettings("g"), got)

	channel := "logs"
	off := false
	updated, err := settings.Update(ctx, "g", model.ModerationSettingsUpdate{LogsChannelID: &channel, NotifyDM: &off})
	require.NoError(t, err)
	assert.Equal(t, "logs", updated.LogsChannelID)
	assert.False(t, updated.NotifyDM)
	assert.True(t, updated.LogLocks)

	// A second partial update keeps earlier values.
	_, err = settings.Update(ctx, "g", model.ModerationSettingsUpdate{LogLocks: &off})
	require.NoError(t, err)
	got, err = settings.Get(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, "logs", got.LogsChannelID)
	assert.False(t, got.NotifyDM)
	assert.False(t, got.LogLocks)
	assert.True(t, got.LogWarnings)
}

func TestGiveRepCooldown(t *testing.T) {
	ctx := context.Background()
	members := newTestStore(t).Members()

	points, _, err := members.GiveRep(ctx, "giver", "a", testNow, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), points)

	_, retryAt, err := members.GiveRep(ctx, "giver", "b", testNow.Add(time.Hour), 24*time.Hour)
	assert.ErrorIs(t, err, ErrOnCooldown)
	assert.True(t, testNow.Add(24*time.Hour).Equal(retryAt))

	points, _, err = members.GiveRep(ctx, "giver", "a", testNow.Add(24*time.Hour), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), points)

	total, err := members.Reputation(ctx, "b")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAFKAndLanguage(t *testing.T) {
	ctx := context.Background()
	members := newTestStore(t).Members()

	require.NoError(t, members.SetAFK(ctx, model.AFKStatus{UserID: "u", Message: "lunch", SetAt: model.NewUnixTime(testNow)}))
	status, err := members.GetAFK(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "lunch", status.Message)

	cleared, err := members.ClearAFK(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "lunch", cleared.Message)
	_, err = members.ClearAFK(ctx, "u")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = members.Language(ctx, "u")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, members.SetLanguage(ctx, "u", "es"))
	require.NoError(t, members.SetLanguage(ctx, "u", "en"))
	lang, err := members.Language(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)
}

func TestPing(t *testing.T) {
	d, err := newTestStore(t).Ping(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, time.Duration(0))
}
