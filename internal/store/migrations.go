package store

import (
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a schema migration step. Exactly one of SQL or
// Apply is set.
type Migration struct {
	Version     int
	Description string
	SQL         string
	Apply       func(tx *sql.Tx) error
}

// MigrationStatus reports the current and available migration versions.
type MigrationStatus struct {
	CurrentVersion   int             `json:"current_version" yaml:"current_version"`
	AvailableVersion int             `json:"available_version" yaml:"available_version"`
	Pending          []MigrationInfo `json:"pending" yaml:"pending"`
}

// MigrationInfo describes a single migration.
type MigrationInfo struct {
	Version     int    `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
}

// SchemaVersion is the schema version this build writes.
const SchemaVersion = 2

// migrations is the ordered list of all schema migrations.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema: scans table",
		SQL: `
CREATE TABLE IF NOT EXISTS scans (
  _id INTEGER PRIMARY KEY AUTOINCREMENT,
  _datetime TEXT NOT NULL,
  content TEXT NOT NULL,
  format TEXT NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "add raw blob column to scans",
		Apply:       addRawColumn,
	},
}

const migrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at TEXT NOT NULL
);
`

func addRawColumn(tx *sql.Tx) error {
	exists, err := columnExists(tx, "scans", "raw")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = tx.Exec("ALTER TABLE scans ADD COLUMN raw BLOB")
	return err
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func columnExists(q queryer, table, column string) (bool, error) {
	rows, err := q.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist.
func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(migrationsTableSQL)
	return err
}

// currentVersion returns the highest applied migration version, or 0 if none.
func currentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// detectLegacyVersion inspects a database that has a scans table but no
// recorded migrations, as written by the mobile app's open helper. It
// returns the schema version the file is already at, or 0 for a fresh
// database.
func detectLegacyVersion(db *sql.DB) (int, error) {
	var scansExist int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='scans'").Scan(&scansExist)
	if err != nil {
		return 0, err
	}
	if scansExist == 0 {
		return 0, nil
	}

	var migrationsExist int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_migrations'").Scan(&migrationsExist)
	if err != nil {
		return 0, err
	}
	if migrationsExist > 0 {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			return 0, err
		}
		if count > 0 {
			return 0, nil
		}
	}

	// user_version is unreliable on hand-made files; the raw column is not.
	hasRaw, err := columnExists(db, "scans", "raw")
	if err != nil {
		return 0, err
	}
	if hasRaw {
		return 2, nil
	}
	return 1, nil
}

func sortedMigrations() []Migration {
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return sorted
}

// runMigrations applies all pending migrations in order.
func runMigrations(db *sql.DB) error {
	// Detect legacy databases BEFORE creating the migrations table.
	legacy, err := detectLegacyVersion(db)
	if err != nil {
		return fmt.Errorf("detect legacy db: %w", err)
	}

	if err := ensureMigrationsTable(db); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for v := 1; v <= legacy; v++ {
		if _, err := db.Exec("INSERT OR IGNORE INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))", v); err != nil {
			return fmt.Errorf("stamp legacy db: %w", err)
		}
	}

	current, err := currentVersion(db)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	for _, m := range sortedMigrations() {
		if m.Version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.Version, err)
	}

	if m.Apply != nil {
		err = m.Apply(tx)
	} else {
		_, err = tx.Exec(m.SQL)
	}
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
	}

	if _, err := tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))", m.Version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.Version, err)
	}
	return nil
}

// MigrationPlan returns the current migration status without applying anything.
func MigrationPlan(db *sql.DB) (*MigrationStatus, error) {
	legacy, err := detectLegacyVersion(db)
	if err != nil {
		return nil, err
	}

	if err := ensureMigrationsTable(db); err != nil {
		return nil, err
	}

	current, err := currentVersion(db)
	if err != nil {
		return nil, err
	}

	effective := current
	if legacy > effective {
		effective = legacy
	}

	sorted := sortedMigrations()
	available := 0
	if len(sorted) > 0 {
		available = sorted[len(sorted)-1].Version
	}

	var pending []MigrationInfo
	for _, m := range sorted {
		if m.Version > effective {
			pending = append(pending, MigrationInfo{Version: m.Version, Description: m.Description})
		}
	}

	return &MigrationStatus{
		CurrentVersion:   effective,
		AvailableVersion: available,
		Pending:          pending,
	}, nil
}
