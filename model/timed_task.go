package model

import "time"

// Reminder is a one-shot notification for a single user.
type Reminder struct {
	ID        int64    `db:"id"`
	UserID    string   `db:"user_id"`
	ChannelID string   `db:"channel_id"`
	Message   string   `db:"message"`
	RemindAt  UnixTime `db:"remind_at"`
	CreatedAt UnixTime `db:"created_at"`
}

func (r Reminder) RecordID() int64  { return r.ID }
func (r Reminder) DueAt() time.Time { return r.RemindAt.Time }

// Schedule is a one-shot channel announcement.
type Schedule struct {
	ID          int64    `db:"id"`
	UserID      string   `db:"user_id"`
	ChannelID   string   `db:"channel_id"`
	Title       string   `db:"title"`
	ScheduledAt UnixTime `db:"scheduled_at"`
	CreatedAt   UnixTime `db:"created_at"`
}

func (s Schedule) RecordID() int64  { return s.ID }
func (s Schedule) DueAt() time.Time { return s.ScheduledAt.Time }
