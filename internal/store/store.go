package store

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMS   = 5000
	maxOpenConns    = 2
	maxIdleConns    = 2
	connMaxLifetime = 5 * time.Minute
)

// ErrUnavailable is returned when the backing database cannot be opened
// or brought up to the current schema.
var ErrUnavailable = errors.New("scan history unavailable")

// Preferences supplies user settings that are read on every insert.
type Preferences interface {
	IgnoreConsecutiveDuplicates() bool
}

// Store wraps the SQLite database.
type Store struct {
	db    *sql.DB
	prefs Preferences
	stmts statements
}

// Open opens the SQLite database, bootstraps the schema and prepares the
// statements used by the scan operations. prefs may be nil, which disables
// duplicate suppression.
func Open(path string, prefs Preferences) (*Store, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db dir: %v", ErrUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: configure: %v", ErrUnavailable, err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	st := &Store{db: db, prefs: prefs}
	if err := st.stmts.prepare(db); err != nil {
		st.stmts.close()
		_ = db.Close()
		return nil, fmt.Errorf("%w: prepare statements: %v", ErrUnavailable, err)
	}
	return st, nil
}

// Close releases prepared statements and closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.stmts.close()
	return s.db.Close()
}

// DB exposes the underlying handle for maintenance commands.
func (s *Store) DB() *sql.DB {
	return s.db
}

func configureDB(db *sql.DB) error {
	// Pragmas ride on the DSN so every pooled connection gets them.
	// Cursors hold one connection; the second serves lookups and writes
	// while a cursor is open.
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		return err
	}
	if mode != "wal" {
		return fmt.Errorf("journal mode is %q, want wal", mode)
	}
	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("db path is required")
	}
	query := fmt.Sprintf("_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", busyTimeoutMS)
	u := url.URL{Scheme: "file", Path: path, RawQuery: query}
	return u.String(), nil
}

// OpenRaw opens the database file without migrating it.
func OpenRaw(path string) (*sql.DB, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	return sql.Open("sqlite", dsn)
}
