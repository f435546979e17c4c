package database

import (
	"context"
	"fmt"
	"time"

	"orion-bot/model"

	"github.com/jmoiron/sqlx"
)

// LockStore persists channel lock and unlock records. Rows are never deleted.
type LockStore struct {
	db *sqlx.DB
}

const lockColumns = `guild_id, channel_id, moderator_id, action, reason, previous_overwrites,
	created_at, expires_at, active, released_at, auto_released`

// Insert appends a record and returns its id. Inserting an active record for a
// channel that already has one fails with ErrActiveLockExists.
func (s *LockStore) Insert(ctx context.Context, rec *model.LockRecord) (int64, error) {
	query := s.db.Rebind(`INSERT INTO channel_locks (` + lockColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := s.db.GetContext(ctx, &id, query,
		rec.GuildID, rec.ChannelID, rec.ModeratorID, rec.Action, rec.Reason, rec.PreviousOverwrites,
		rec.CreatedAt, rec.ExpiresAt, rec.Active, rec.ReleasedAt, rec.AutoReleased)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrActiveLockExists
		}
		return 0, fmt.Errorf("failed to insert lock record: %w", err)
	}
	rec.ID = id
	return id, nil
}

// Active returns the active lock for a channel, or ErrNotFound.
func (s *LockStore) Active(ctx context.Context, guildID, channelID string) (*model.LockRecord, error) {
	var rec model.LockRecord
	query := s.db.Rebind(`SELECT * FROM channel_locks WHERE guild_id = ? AND channel_id = ? AND active = TRUE`)
	if err := s.db.GetContext(ctx, &rec, query, guildID, channelID); err != nil {
		return nil, fmt.Errorf("failed to get active lock for channel %s: %w", channelID, notFound(err))
	}
	return &rec, nil
}

// Release deactivates the channel's active lock and stamps the release time
// in one statement. Only one concurrent caller gets the record back; the
// others receive ErrNotFound.
func (s *LockStore) Release(ctx context.Context, guildID, channelID string, at time.Time, auto bool) (*model.LockRecord, error) {
	var rec model.LockRecord
	query := s.db.Rebind(`UPDATE channel_locks SET active = FALSE, released_at = ?, auto_released = ?
		WHERE guild_id = ? AND channel_id = ? AND active = TRUE RETURNING *`)
	if err := s.db.GetContext(ctx, &rec, query, model.NewUnixTime(at), auto, guildID, channelID); err != nil {
		return nil, fmt.Errorf("failed to release lock for channel %s: %w", channelID, notFound(err))
	}
	return &rec, nil
}

// ReleaseByID is Release keyed by record id, used when resolving a specific expired record.
func (s *LockStore) ReleaseByID(ctx context.Context, id int64, at time.Time, auto bool) (*model.LockRecord, error) {
	var rec model.LockRecord
	query := s.db.Rebind(`UPDATE channel_locks SET active = FALSE, released_at = ?, auto_released = ?
		WHERE id = ? AND active = TRUE RETURNING *`)
	if err := s.db.GetContext(ctx, &rec, query, model.NewUnixTime(at), auto, id); err != nil {
		return nil, fmt.Errorf("failed to release lock %d: %w", id, notFound(err))
	}
	return &rec, nil
}

// Due lists active locks whose expiry is at or before now, oldest expiry first.
func (s *LockStore) Due(ctx context.Context, now time.Time) ([]model.LockRecord, error) {
	var recs []model.LockRecord
	query := s.db.Rebind(`SELECT * FROM channel_locks
		WHERE active = TRUE AND expires_at IS NOT NULL AND expires_at <= ?
		ORDER BY expires_at, id`)
	if err := s.db.SelectContext(ctx, &recs, query, model.NewUnixTime(now)); err != nil {
		return nil, fmt.Errorf("failed to get due locks: %w", err)
	}
	return recs, nil
}

// History returns the most recent records for a channel, newest first.
func (s *LockStore) History(ctx context.Context, guildID, channelID string, limit int) ([]model.LockRecord, error) {
	var recs []model.LockRecord
	query := s.db.Rebind(`SELECT * FROM channel_locks WHERE guild_id = ? AND channel_id = ?
		ORDER BY id DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &recs, query, guildID, channelID, limit); err != nil {
		return nil, fmt.Errorf("failed to get lock history for channel %s: %w", channelID, err)
	}
	return recs, nil
}
