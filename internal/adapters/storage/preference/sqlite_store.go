package preference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusverse/internal/adapters/storage"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: db has been migrated
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Get returns the raw value stored for (visitorID, key).
// PRE: visitorID and key are non-empty
// POST: returns ErrNotFound when no row exists
func (s *SQLiteStore) Get(ctx context.Context, visitorID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preference WHERE visitor_id = ? AND key = ?`, visitorID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("preference get %s: %w", key, err)
	}
	return value, nil
}

// Put inserts or replaces the value for (visitorID, key).
// PRE: visitorID and key are non-empty
// POST: Get returns value
func (s *SQLiteStore) Put(ctx context.Context, visitorID, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preference (visitor_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(visitor_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		visitorID, key, value, s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("preference put %s: %w", key, err)
	}
	return nil
}
