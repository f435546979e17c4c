package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// UnixTime is a time.Time persisted as integer unix milliseconds so that
// range comparisons in SQL are numeric on every driver.
type UnixTime struct {
	time.Time
}

// NewUnixTime truncates t to millisecond precision in UTC.
func NewUnixTime(t time.Time) UnixTime {
	return UnixTime{Time: time.UnixMilli(t.UnixMilli()).UTC()}
}

// UnixTimePtr is a convenience for optional columns.
func UnixTimePtr(t *time.Time) *UnixTime {
	if t == nil {
		return nil
	}
	u := NewUnixTime(*t)
	return &u
}

// Value implements driver.Valuer.
func (t UnixTime) Value() (driver.Value, error) {
	return t.UTC().UnixMilli(), nil
}

// Scan implements sql.Scanner.
func (t *UnixTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case int64:
		t.Time = time.UnixMilli(v).UTC()
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("unix time: unsupported column type %T", src)
	}
	return nil
}

func (t *UnixTime) scanString(s string) error {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("unix time: %w", err)
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}
