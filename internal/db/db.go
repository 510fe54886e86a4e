package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/vocab.db.
// The baseDir parameter allows tests to use t.TempDir() instead of
// ~/.vocabsync.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the connection string so they apply to every connection.
	// foreign_keys must be on for the sync-record cascade.
	dbPath := filepath.Join(baseDir, "vocab.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(database); err != nil {
		database.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return database, nil
}

// migrate applies schema migrations based on user_version, then the
// additive column checklist. Both are idempotent, so reopening an
// up-to-date database is a no-op.
func migrate(database *sql.DB) error {
	version, err := GetUserVersion(database)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: base schema. Columns added after this version
	// shipped are handled by ensureColumns below, not by new versions.
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS words (
		  id                INTEGER PRIMARY KEY AUTOINCREMENT,
		  term              TEXT NOT NULL UNIQUE,
		  translation       TEXT NOT NULL DEFAULT '',
		  definition_target TEXT NOT NULL DEFAULT '',
		  definition_native TEXT NOT NULL DEFAULT '',
		  pronunciation     TEXT NOT NULL DEFAULT '',
		  grammar           TEXT NOT NULL DEFAULT '',
		  collocations      TEXT NOT NULL DEFAULT '[]',
		  synonyms          TEXT NOT NULL DEFAULT '[]',
		  examples_target   TEXT NOT NULL DEFAULT '[]',
		  examples_native   TEXT NOT NULL DEFAULT '[]',
		  etymology         TEXT NOT NULL DEFAULT '',
		  related           TEXT NOT NULL DEFAULT '[]',
		  created_at        INTEGER NOT NULL,
		  updated_at        INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sync_records (
		  id              INTEGER PRIMARY KEY AUTOINCREMENT,
		  entry_id        INTEGER NOT NULL UNIQUE REFERENCES words(id) ON DELETE CASCADE,
		  note_id         INTEGER NOT NULL DEFAULT 0,
		  deck            TEXT NOT NULL DEFAULT 'Default',
		  synced_at       INTEGER,
		  last_updated_at INTEGER,
		  sync_count      INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_words_term ON words(term);
		CREATE INDEX IF NOT EXISTS idx_words_created ON words(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_sync_entry ON sync_records(entry_id);
		CREATE INDEX IF NOT EXISTS idx_sync_note ON sync_records(note_id);
		CREATE INDEX IF NOT EXISTS idx_sync_synced_at ON sync_records(synced_at);
		`
		if _, err := database.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(database, 1); err != nil {
			return err
		}
	}

	return ensureColumns(database)
}

// expectedColumns is the additive, forward-only column checklist. Columns
// that postdate the base schema are added here with explicit defaults so
// old databases keep working without a separate migration step.
var expectedColumns = map[string][]columnDef{
	"words": {
		{"level", "TEXT NOT NULL DEFAULT ''"},
		{"tags", "TEXT NOT NULL DEFAULT '[]'"},
		{"score", "INTEGER NOT NULL DEFAULT 0"},
	},
	"sync_records": {
		{"reviews", "INTEGER"},
		{"lapses", "INTEGER"},
		{"ease_factor", "INTEGER"},
		{"interval", "INTEGER"},
		{"due", "INTEGER"},
	},
}

type columnDef struct {
	name string
	typ  string
}

// ensureColumns introspects each table and applies ADD COLUMN for any
// expected column that is missing. Never destroys data.
func ensureColumns(database *sql.DB) error {
	for table, cols := range expectedColumns {
		existing, err := tableColumns(database, table)
		if err != nil {
			return err
		}
		for _, col := range cols {
			if existing[col.name] {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %q %s", table, col.name, col.typ)
			if _, err := database.Exec(stmt); err != nil {
				return fmt.Errorf("add column %s.%s: %w", table, col.name, err)
			}
		}
	}
	return nil
}

// tableColumns returns the set of column names currently on a table.
func tableColumns(database *sql.DB, table string) (map[string]bool, error) {
	rows, err := database.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("introspect %s: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(database *sql.DB) (int, error) {
	var version int
	if err := database.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(database *sql.DB, version int) error {
	_, err := database.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
