package database

import (
	"context"
	"fmt"

	"orion-bot/model"

	"github.com/jmoiron/sqlx"
)

// WarningStore persists warnings and the per-guild case counter.
type WarningStore struct {
	db *sqlx.DB
}

// NextCaseID increments the guild's counter and returns the new value in a
// single statement, so concurrent callers never share an id. Counters are
// never decremented.
func (s *WarningStore) NextCaseID(ctx context.Context, guildID string) (int64, error) {
	query := s.db.Rebind(`INSERT INTO warning_counters (guild_id, seq) VALUES (?, 1)
		ON CONFLICT (guild_id) DO UPDATE SET seq = warning_counters.seq + 1
		RETURNING seq`)
	var seq int64
	if err := s.db.GetContext(ctx, &seq, query, guildID); err != nil {
		return 0, fmt.Errorf("failed to increment case counter for guild %s: %w", guildID, err)
	}
	return seq, nil
}

// Add assigns the next case id and stores the warning.
func (s *WarningStore) Add(ctx context.Context, w *model.Warning) error {
	caseID, err := s.NextCaseID(ctx, w.GuildID)
	if err != nil {
		return err
	}
	w.CaseID = caseID

	query := s.db.Rebind(`INSERT INTO warnings (guild_id, user_id, moderator_id, reason, created_at, case_id, attachment)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := s.db.GetContext(ctx, &w.ID, query,
		w.GuildID, w.UserID, w.ModeratorID, w.Reason, w.CreatedAt, w.CaseID, w.Attachment); err != nil {
		return fmt.Errorf("failed to insert warning: %w", err)
	}
	return nil
}

// ByUser lists a member's warnings, newest first.
func (s *WarningStore) ByUser(ctx context.Context, guildID, userID string) ([]model.Warning, error) {
	var warnings []model.Warning
	query := s.db.Rebind(`SELECT * FROM warnings WHERE guild_id = ? AND user_id = ? ORDER BY created_at DESC, case_id DESC`)
	if err := s.db.SelectContext(ctx, &warnings, query, guildID, userID); err != nil {
		return nil, fmt.Errorf("failed to get warnings for user %s: %w", userID, err)
	}
	return warnings, nil
}

// ByCase returns one warning by its case id.
func (s *WarningStore) ByCase(ctx context.Context, guildID string, caseID int64) (*model.Warning, error) {
	var w model.Warning
	query := s.db.Rebind(`SELECT * FROM warnings WHERE guild_id = ? AND case_id = ?`)
	if err := s.db.GetContext(ctx, &w, query, guildID, caseID); err != nil {
		return nil, fmt.Errorf("failed to get case %d: %w", caseID, notFound(err))
	}
	return &w, nil
}

// DeleteCase removes a warning and returns it.
func (s *WarningStore) DeleteCase(ctx context.Context, guildID string, caseID int64) (*model.Warning, error) {
	var w model.Warning
	query := s.db.Rebind(`DELETE FROM warnings WHERE guild_id = ? AND case_id = ? RETURNING *`)
	if err := s.db.GetContext(ctx, &w, query, guildID, caseID); err != nil {
		return nil, fmt.Errorf("failed to delete case %d: %w", caseID, notFound(err))
	}
	return &w, nil
}

// ClearUser deletes all of a member's warnings and returns how many were removed.
func (s *WarningStore) ClearUser(ctx context.Context, guildID, userID string) (int64, error) {
	query := s.db.Rebind(`DELETE FROM warnings WHERE guild_id = ? AND user_id = ?`)
	result, err := s.db.ExecContext(ctx, query, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear warnings for user %s: %w", userID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected clearing user %s: %w", userID, err)
	}
	return n, nil
}

// UpdateReason rewrites a case's reason and returns the updated warning.
func (s *WarningStore) UpdateReason(ctx context.Context, guildID string, caseID int64, reason string) (*model.Warning, error) {
	var w model.Warning
	query := s.db.Rebind(`UPDATE warnings SET reason = ? WHERE guild_id = ? AND case_id = ? RETURNING *`)
	if err := s.db.GetContext(ctx, &w, query, reason, guildID, caseID); err != nil {
		return nil, fmt.Errorf("failed to edit case %d: %w", caseID, notFound(err))
	}
	return &w, nil
}

// CountUser returns how many warnings a member currently has.
func (s *WarningStore) CountUser(ctx context.Context, guildID, userID string) (int64, error) {
	var n int64
	query := s.db.Rebind(`SELECT COUNT(*) FROM warnings WHERE guild_id = ? AND user_id = ?`)
	if err := s.db.GetContext(ctx, &n, query, guildID, userID); err != nil {
		return 0, fmt.Errorf("failed to count warnings for user %s: %w", userID, err)
	}
	return n, nil
}
