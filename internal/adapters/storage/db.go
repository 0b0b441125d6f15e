package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// migration upgrades the schema by one version inside a transaction.
type migration func(tx *sql.Tx) error

// migrations is the ordered schema history; index i upgrades to version i+1.
var migrations = []migration{
	migrateV1Baseline,
	migrateV2ContactDelivery,
}

// Open opens the SQLite database at path and applies connection pragmas.
// PRE: path is a file path or ":memory:"
// POST: WAL mode and foreign keys are enabled
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// LatestSchemaVersion returns the version MigrateDB upgrades to.
func LatestSchemaVersion() int {
	return len(migrations)
}

// SchemaVersion returns the applied schema version, 0 for an untracked database.
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check schema_version: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return v, nil
}

// MigrateDB applies every pending migration in order.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion(); running it again is a no-op
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for i := current; i < len(migrations); i++ {
		version := i + 1
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: begin: %w", version, err)
		}
		if err := migrations[i](tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version, applied_at) VALUES (?, ?)`,
			version, time.Now().UTC().Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", version, err)
		}
	}
	return nil
}

func migrateV1Baseline(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE TABLE IF NOT EXISTS preference (
		visitor_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (visitor_id, key)
	);

	CREATE TABLE IF NOT EXISTS contact_message (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		submitted_at TEXT NOT NULL
	);
	`)
	return err
}

func migrateV2ContactDelivery(tx *sql.Tx) error {
	_, err := tx.Exec(`
	ALTER TABLE contact_message ADD COLUMN delivered_at TEXT;
	ALTER TABLE contact_message ADD COLUMN delivery_error TEXT NOT NULL DEFAULT '';
	ALTER TABLE contact_message ADD COLUMN attempts INTEGER NOT NULL DEFAULT 0;
	CREATE INDEX IF NOT EXISTS idx_contact_message_submitted_at ON contact_message(submitted_at);
	`)
	return err
}
