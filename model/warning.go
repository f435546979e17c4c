package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attachment is the evidence file attached to a warning.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

func (a Attachment) Value() (driver.Value, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (a *Attachment) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = Attachment{}
		return nil
	}
	return fmt.Errorf("attachment: unsupported column type %T", src)
}

// Warning represents a single warning in the database.
// The database table will be named 'warnings'.
type Warning struct {
	ID          int64       `db:"id"`
	GuildID     string      `db:"guild_id"`
	UserID      string      `db:"user_id"`
	ModeratorID string      `db:"moderator_id"`
	Reason      string      `db:"reason"`
	CreatedAt   UnixTime    `db:"created_at"`
	CaseID      int64       `db:"case_id"` // per guild, never reused
	Attachment  *Attachment `db:"attachment"`
}

// ModerationSettings is the per-guild moderation configuration.
type ModerationSettings struct {
	GuildID       string `db:"guild_id"`
	LogsChannelID string `db:"logs_channel_id"`
	LogWarnings   bool   `db:"log_warnings"`
	LogLocks      bool   `db:"log_locks"`
	LogSlowmode   bool   `db:"log_slowmode"`
	NotifyDM      bool   `db:"notify_dm"`
}

// DefaultModerationSettings is used for guilds that were never configured.
func DefaultModerationSettings(guildID string) ModerationSettings {
	return ModerationSettings{
		GuildID:     guildID,
		LogWarnings: true,
		LogLocks:    true,
		LogSlowmode: true,
		NotifyDM:    true,
	}
}

// ModerationSettingsUpdate holds the fields a setup call changes; nil fields are kept.
type ModerationSettingsUpdate struct {
	LogsChannelID *string
	LogWarnings   *bool
	LogLocks      *bool
	LogSlowmode   *bool
	NotifyDM      *bool
}

// Apply returns s with the non-nil fields of u applied.
func (u ModerationSettingsUpdate) Apply(s ModerationSettings) ModerationSettings {
	if u.LogsChannelID != nil {
		s.LogsChannelID = *u.LogsChannelID
	}
	if u.LogWarnings != nil {
		s.LogWarnings = *u.LogWarnings
	}
	if u.LogLocks != nil {
		s.LogLocks = *u.LogLocks
	}
	if u.LogSlowmode != nil {
		s.LogSlowmode = *u.LogSlowmode
	}
	if u.NotifyDM != nil {
		s.NotifyDM = *u.NotifyDM
	}
	return s
}

// IsEmpty reports whether the update changes nothing.
func (u ModerationSettingsUpdate) IsEmpty() bool {
	return u.LogsChannelID == nil && u.LogWarnings == nil && u.LogLocks == nil && u.LogSlowmode == nil && u.NotifyDM == nil
}
