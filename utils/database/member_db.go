package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"orion-bot/model"

	"github.com/jmoiron/sqlx"
)

// MemberStore persists per-user state: AFK status, reputation and language.
type MemberStore struct {
	db *sqlx.DB
}

// SetAFK stores or replaces a user's AFK message.
func (s *MemberStore) SetAFK(ctx context.Context, status model.AFKStatus) error {
	query := s.db.Rebind(`INSERT INTO afk (user_id, message, set_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET message = excluded.message, set_at = excluded.set_at`)
	if _, err := s.db.ExecContext(ctx, query, status.UserID, status.Message, status.SetAt); err != nil {
		return fmt.Errorf("failed to set afk for user %s: %w", status.UserID, err)
	}
	return nil
}

// GetAFK returns a user's AFK status, or ErrNotFound.
func (s *MemberStore) GetAFK(ctx context.Context, userID string) (*model.AFKStatus, error) {
	var status model.AFKStatus
	if err := s.db.GetContext(ctx, &status, s.db.Rebind(`SELECT * FROM afk WHERE user_id = ?`), userID); err != nil {
		return nil, fmt.Errorf("failed to get afk for user %s: %w", userID, notFound(err))
	}
	return &status, nil
}

// ClearAFK removes a user's AFK status and returns what was removed, or ErrNotFound.
func (s *MemberStore) ClearAFK(ctx context.Context, userID string) (*model.AFKStatus, error) {
	var status model.AFKStatus
	if err := s.db.GetContext(ctx, &status, s.db.Rebind(`DELETE FROM afk WHERE user_id = ? RETURNING *`), userID); err != nil {
		return nil, fmt.Errorf("failed to clear afk for user %s: %w", userID, notFound(err))
	}
	return &status, nil
}

// GiveRep adds one reputation point to receiverID if giverID's last grant is at
// least cooldown old. On cooldown it returns ErrOnCooldown together with the
// time the giver may try again.
func (s *MemberStore) GiveRep(ctx context.Context, giverID, receiverID string, now time.Time, cooldown time.Duration) (points int64, retryAt time.Time, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to begin rep transaction: %w", err)
	}
	defer tx.Rollback()

	claim := tx.Rebind(`INSERT INTO rep_cooldowns (user_id, last_given_at) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET last_given_at = excluded.last_given_at
		WHERE rep_cooldowns.last_given_at <= ?
		RETURNING last_given_at`)
	var given model.UnixTime
	err = tx.GetContext(ctx, &given, claim, giverID, model.NewUnixTime(now), model.NewUnixTime(now.Add(-cooldown)))
	if errors.Is(err, sql.ErrNoRows) {
		var last model.UnixTime
		if err := tx.GetContext(ctx, &last, tx.Rebind(`SELECT last_given_at FROM rep_cooldowns WHERE user_id = ?`), giverID); err != nil {
			return 0, time.Time{}, fmt.Errorf("failed to read rep cooldown for user %s: %w", giverID, err)
		}
		return 0, last.Add(cooldown), ErrOnCooldown
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to claim rep cooldown for user %s: %w", giverID, err)
	}

	incr := tx.Rebind(`INSERT INTO reputation (user_id, points) VALUES (?, 1)
		ON CONFLICT (user_id) DO UPDATE SET points = reputation.points + 1
		RETURNING points`)
	if err := tx.GetContext(ctx, &points, incr, receiverID); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to add reputation for user %s: %w", receiverID, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to commit reputation: %w", err)
	}
	return points, time.Time{}, nil
}

// Reputation returns a user's points, zero when they have none.
func (s *MemberStore) Reputation(ctx context.Context, userID string) (int64, error) {
	var points int64
	err := s.db.GetContext(ctx, &points, s.db.Rebind(`SELECT points FROM reputation WHERE user_id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get reputation for user %s: %w", userID, err)
	}
	return points, nil
}

// SetLanguage stores a user's preferred language code.
func (s *MemberStore) SetLanguage(ctx context.Context, userID, language string) error {
	query := s.db.Rebind(`INSERT INTO user_language_preferences (user_id, language) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET language = excluded.language`)
	if _, err := s.db.ExecContext(ctx, query, userID, language); err != nil {
		return fmt.Errorf("failed to set language for user %s: %w", userID, err)
	}
	return nil
}

// Language returns a user's preferred language, or ErrNotFound.
func (s *MemberStore) Language(ctx context.Context, userID string) (string, error) {
	var language string
	err := s.db.GetContext(ctx, &language, s.db.Rebind(`SELECT language FROM user_language_preferences WHERE user_id = ?`), userID)
	if err != nil {
		return "", fmt.Errorf("failed to get language for user %s: %w", userID, notFound(err))
	}
	return language, nil
}
