package contact

import (
	"context"

	domain "campusverse/internal/domain/contact"
)

// Store persists submitted contact messages.
type Store interface {
	Save(ctx context.Context, m domain.Message) error
	GetByID(ctx context.Context, id string) (domain.Message, error)
	ListPending(ctx context.Context, limit int) ([]domain.Message, error)
	Count(ctx context.Context) (int, error)
}
