package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// OverwriteState is the per-role value of a single channel permission.
// Inherit means the role has no explicit value and follows the guild default.
type OverwriteState int

const (
	OverwriteInherit OverwriteState = iota
	OverwriteAllow
	OverwriteDeny
)

func (s OverwriteState) String() string {
	switch s {
	case OverwriteAllow:
		return "allow"
	case OverwriteDeny:
		return "deny"
	default:
		return "inherit"
	}
}

// ParseOverwriteState is the inverse of String.
func ParseOverwriteState(s string) (OverwriteState, error) {
	switch s {
	case "allow":
		return OverwriteAllow, nil
	case "deny":
		return OverwriteDeny, nil
	case "inherit", "":
		return OverwriteInherit, nil
	}
	return OverwriteInherit, fmt.Errorf("unknown overwrite state %q", s)
}

func (s OverwriteState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OverwriteState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseOverwriteState(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// RoleOverwrite is the send-permission state a role had before a lock.
type RoleOverwrite struct {
	RoleID   string         `json:"role_id"`
	Previous OverwriteState `json:"previous"`
}

// RoleOverwrites is stored as a JSON array column.
type RoleOverwrites []RoleOverwrite

func (r RoleOverwrites) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]RoleOverwrite(r))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (r *RoleOverwrites) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("role overwrites: unsupported column type %T", src)
	}
	if len(data) == 0 {
		*r = nil
		return nil
	}
	return json.Unmarshal(data, (*[]RoleOverwrite)(r))
}

type LockAction string

const (
	LockActionLock   LockAction = "lock"
	LockActionUnlock LockAction = "unlock"
)

// LockRecord is a row of the channel_locks table. Lock rows carry the
// captured overwrites; unlock rows are audit entries only.
type LockRecord struct {
	ID                 int64          `db:"id"`
	GuildID            string         `db:"guild_id"`
	ChannelID          string         `db:"channel_id"`
	ModeratorID        string         `db:"moderator_id"`
	Action             LockAction     `db:"action"`
	Reason             string         `db:"reason"`
	PreviousOverwrites RoleOverwrites `db:"previous_overwrites"`
	CreatedAt          UnixTime       `db:"created_at"`
	ExpiresAt          *UnixTime      `db:"expires_at"`
	Active             bool           `db:"active"`
	ReleasedAt         *UnixTime      `db:"released_at"`
	AutoReleased       bool           `db:"auto_released"`
}
