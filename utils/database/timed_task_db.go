package database

import (
	"context"
	"fmt"
	"time"

	"orion-bot/model"

	"github.com/jmoiron/sqlx"
)

// timedTable holds the queries shared by one-shot delivery tables.
// table and dueColumn are package constants, never user input.
type timedTable[T any] struct {
	db        *sqlx.DB
	table     string
	dueColumn string
}

// Get returns a pending record by id.
func (t *timedTable[T]) Get(ctx context.Context, id int64) (*T, error) {
	var rec T
	query := t.db.Rebind(fmt.Sprintf("SELECT * FROM %s WHERE id = ?", t.table))
	if err := t.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", t.table, id, notFound(err))
	}
	return &rec, nil
}

// Claim deletes the record and returns it. Exactly one caller can claim a
// record; later callers get ErrNotFound.
func (t *timedTable[T]) Claim(ctx context.Context, id int64) (*T, error) {
	var rec T
	query := t.db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ? RETURNING *", t.table))
	if err := t.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, fmt.Errorf("failed to claim %s %d: %w", t.table, id, notFound(err))
	}
	return &rec, nil
}

// Due lists records whose delivery time is at or before now, in insertion order.
func (t *timedTable[T]) Due(ctx context.Context, now time.Time) ([]T, error) {
	var recs []T
	query := t.db.Rebind(fmt.Sprintf("SELECT * FROM %s WHERE %s <= ? ORDER BY id", t.table, t.dueColumn))
	if err := t.db.SelectContext(ctx, &recs, query, model.NewUnixTime(now)); err != nil {
		return nil, fmt.Errorf("failed to get due %s: %w", t.table, err)
	}
	return recs, nil
}

// Pending lists every record still waiting for delivery.
func (t *timedTable[T]) Pending(ctx context.Context) ([]T, error) {
	var recs []T
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s, id", t.table, t.dueColumn)
	if err := t.db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("failed to get pending %s: %w", t.table, err)
	}
	return recs, nil
}

// ListByUser lists a user's pending records, soonest first.
func (t *timedTable[T]) ListByUser(ctx context.Context, userID string) ([]T, error) {
	var recs []T
	query := t.db.Rebind(fmt.Sprintf("SELECT * FROM %s WHERE user_id = ? ORDER BY %s, id", t.table, t.dueColumn))
	if err := t.db.SelectContext(ctx, &recs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list %s for user %s: %w", t.table, userID, err)
	}
	return recs, nil
}

type ReminderStore struct {
	timedTable[model.Reminder]
}

// Insert stores a reminder and sets its ID.
func (s *ReminderStore) Insert(ctx context.Context, r *model.Reminder) error {
	query := s.db.Rebind(`INSERT INTO reminders (user_id, channel_id, message, remind_at, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	if err := s.db.GetContext(ctx, &r.ID, query, r.UserID, r.ChannelID, r.Message, r.RemindAt, r.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}
	return nil
}

type ScheduleStore struct {
	timedTable[model.Schedule]
}

// Insert stores a schedule and sets its ID.
func (s *ScheduleStore) Insert(ctx context.Context, sc *model.Schedule) error {
	query := s.db.Rebind(`INSERT INTO schedules (user_id, channel_id, title, scheduled_at, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	if err := s.db.GetContext(ctx, &sc.ID, query, sc.UserID, sc.ChannelID, sc.Title, sc.ScheduledAt, sc.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}
	return nil
}
