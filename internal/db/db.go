package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mjessen/formpilot/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/formpilot.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.formpilot.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions; the database holds
	// the personal-data record, so keep it private to the user.
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, "formpilot.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1).
	// One table per store namespace; namespaces are independently clearable.
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS captures (
		  id               TEXT PRIMARY KEY,
		  url              TEXT NOT NULL,
		  title            TEXT,
		  fields_json      TEXT NOT NULL,
		  headings_json    TEXT,
		  buttons_json     TEXT,
		  main_content     TEXT,
		  page_description TEXT,
		  created_at       INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_captures_created
		ON captures(created_at DESC);

		CREATE TABLE IF NOT EXISTS profile (
		  id          INTEGER PRIMARY KEY CHECK (id = 1),
		  record_json TEXT NOT NULL,
		  updated_at  INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS messages (
		  id         INTEGER PRIMARY KEY AUTOINCREMENT,
		  session_id TEXT NOT NULL,
		  role       TEXT NOT NULL,
		  content    TEXT NOT NULL,
		  created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS roadmap_steps (
		  id           TEXT PRIMARY KEY,
		  ord          INTEGER NOT NULL,
		  title        TEXT NOT NULL,
		  status       TEXT NOT NULL DEFAULT 'pending',
		  notes        TEXT,
		  completed_at INTEGER
		);

		CREATE TABLE IF NOT EXISTS events (
		  id         INTEGER PRIMARY KEY AUTOINCREMENT,
		  name       TEXT NOT NULL,
		  detail     TEXT,
		  created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS snapshots (
		  name       TEXT PRIMARY KEY,
		  body       TEXT NOT NULL,
		  fetched_at INTEGER NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
