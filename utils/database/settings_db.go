package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"orion-bot/model"

	"github.com/jmoiron/sqlx"
)

// SettingsStore persists per-guild moderation settings.
type SettingsStore struct {
	db *sqlx.DB
}

// Get returns the guild's settings, or the defaults if it was never configured.
func (s *SettingsStore) Get(ctx context.Context, guildID string) (model.ModerationSettings, error) {
	return s.get(ctx, s.db, guildID)
}

func (s *SettingsStore) get(ctx context.Context, q sqlx.QueryerContext, guildID string) (model.ModerationSettings, error) {
	var settings model.ModerationSettings
	err := sqlx.GetContext(ctx, q, &settings, s.db.Rebind(`SELECT * FROM moderation_settings WHERE guild_id = ?`), guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultModerationSettings(guildID), nil
	}
	if err != nil {
		return model.ModerationSettings{}, fmt.Errorf("failed to get moderation settings for guild %s: %w", guildID, err)
	}
	return settings, nil
}

// Update applies the non-nil fields of u on top of the stored (or default)
// settings and upserts the result.
func (s *SettingsStore) Update(ctx context.Context, guildID string, u model.ModerationSettingsUpdate) (model.ModerationSettings, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.ModerationSettings{}, fmt.Errorf("failed to begin settings transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := s.get(ctx, tx, guildID)
	if err != nil {
		return model.ModerationSettings{}, err
	}
	next := u.Apply(current)

	query := tx.Rebind(`INSERT INTO moderation_settings (guild_id, logs_channel_id, log_warnings, log_locks, log_slowmode, notify_dm)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (guild_id) DO UPDATE SET
			logs_channel_id = excluded.logs_channel_id,
			log_warnings = excluded.log_warnings,
			log_locks = excluded.log_locks,
			log_slowmode = excluded.log_slowmode,
			notify_dm = excluded.notify_dm`)
	if _, err := tx.ExecContext(ctx, query,
		guildID, next.LogsChannelID, next.LogWarnings, next.LogLocks, next.LogSlowmode, next.NotifyDM); err != nil {
		return model.ModerationSettings{}, fmt.Errorf("failed to save moderation settings for guild %s: %w", guildID, err)
	}
	if err := tx.Commit(); err != nil {
		return model.ModerationSettings{}, fmt.Errorf("failed to commit moderation settings: %w", err)
	}
	return next, nil
}
