package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"campusverse/internal/adapters/storage"
	domain "campusverse/internal/domain/contact"
)

// ErrNotFound is returned when no message has the requested ID.
var ErrNotFound = errors.New("contact message not found")

type sqliteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore returns a Store backed by SQLite.
func NewSQLiteStore(db storage.SQLDB) Store {
	return &sqliteStore{db: db}
}

const selectColumns = `id, name, email, subject, message, submitted_at, delivered_at, delivery_error, attempts`

// Save inserts or updates a message.
// PRE: m.ID is non-empty
// POST: row upserted into contact_message
func (s *sqliteStore) Save(ctx context.Context, m domain.Message) error {
	var deliveredAt sql.NullString
	if !m.DeliveredAt.IsZero() {
		deliveredAt = sql.NullString{String: m.DeliveredAt.UTC().Format(time.RFC3339), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_message (`+selectColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			delivered_at = excluded.delivered_at,
			delivery_error = excluded.delivery_error,
			attempts = excluded.attempts`,
		m.ID,
		m.Name,
		m.Email,
		m.Subject,
		m.Message,
		m.SubmittedAt.UTC().Format(time.RFC3339),
		deliveredAt,
		m.DeliveryError,
		m.Attempts,
	)
	if err != nil {
		return fmt.Errorf("contact save: %w", err)
	}
	return nil
}

// GetByID retrieves a message by ID.
// PRE: id is non-empty
// POST: returns ErrNotFound when absent
func (s *sqliteStore) GetByID(ctx context.Context, id string) (domain.Message, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM contact_message WHERE id = ?`, id)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Message{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return domain.Message{}, fmt.Errorf("contact get: %w", err)
	}
	return m, nil
}

// ListPending returns undelivered messages that still have attempts left, oldest first.
// PRE: limit > 0
func (s *sqliteStore) ListPending(ctx context.Context, limit int) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+` FROM contact_message
		WHERE delivered_at IS NULL AND attempts < ?
		ORDER BY submitted_at ASC LIMIT ?`, domain.MaxDeliveryAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("contact list pending: %w", err)
	}
	defer rows.Close()

	var list []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("contact scan: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Count returns the number of stored messages.
func (s *sqliteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_message`).Scan(&n); err != nil {
		return 0, fmt.Errorf("contact count: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(sc scanner) (domain.Message, error) {
	var m domain.Message
	var submittedAt string
	var deliveredAt sql.NullString
	err := sc.Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.Subject,
		&m.Message,
		&submittedAt,
		&deliveredAt,
		&m.DeliveryError,
		&m.Attempts,
	)
	if err != nil {
		return domain.Message{}, err
	}
	m.SubmittedAt, _ = time.Parse(time.RFC3339, submittedAt)
	if deliveredAt.Valid {
		m.DeliveredAt, _ = time.Parse(time.RFC3339, deliveredAt.String)
	}
	return m, nil
}
