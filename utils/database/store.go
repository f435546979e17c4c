package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"orion-bot/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a lookup, claim or conditional update matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrActiveLockExists is returned when a channel already has an active lock.
	ErrActiveLockExists = errors.New("channel already has an active lock")
	// ErrOnCooldown is returned by rate-limited writes that were rejected.
	ErrOnCooldown = errors.New("action is on cooldown")
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store owns the database handle and hands out the per-collection stores.
type Store struct {
	db     *sqlx.DB
	driver string

	locks     *LockStore
	reminders *ReminderStore
	schedules *ScheduleStore
	warnings  *WarningStore
	settings  *SettingsStore
	members   *MemberStore
}

// Open connects with the given driver ("sqlite3" or "postgres") and creates
// the schema if it does not exist yet.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows one writer; a single connection keeps the
		// conditional statements below from hitting SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	s.locks = &LockStore{db: db}
	s.reminders = &ReminderStore{timedTable: timedTable[model.Reminder]{db: db, table: "reminders", dueColumn: "remind_at"}}
	s.schedules = &ScheduleStore{timedTable: timedTable[model.Schedule]{db: db, table: "schedules", dueColumn: "scheduled_at"}}
	s.warnings = &WarningStore{db: db}
	s.settings = &SettingsStore{db: db}
	s.members = &MemberStore{db: db}
	return s, nil
}

func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (s *Store) Locks() *LockStore         { return s.locks }
func (s *Store) Reminders() *ReminderStore { return s.reminders }
func (s *Store) Schedules() *ScheduleStore { return s.schedules }
func (s *Store) Warnings() *WarningStore   { return s.warnings }
func (s *Store) Settings() *SettingsStore  { return s.settings }
func (s *Store) Members() *MemberStore     { return s.members }

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string { return s.driver }

// Ping measures a round trip to the database.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("database ping: %w", err)
	}
	var one int
	if err := s.db.GetContext(ctx, &one, "SELECT 1"); err != nil {
		return 0, fmt.Errorf("database ping: %w", err)
	}
	return time.Since(start), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	for _, stmt := range schema {
		stmt = strings.ReplaceAll(stmt, "{{id}}", idColumn)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// isUniqueViolation recognises unique constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// notFound maps sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
