package catalog

import (
	"context"

	"campusverse/internal/domain/activity"
	domain "campusverse/internal/domain/catalog"
)

// Store serves the read-only catalog.
type Store interface {
	Collection(ctx context.Context, kind domain.Kind) (domain.Collection, error)
	List(ctx context.Context, kind domain.Kind) ([]domain.Item, error)
	GetByID(ctx context.Context, kind domain.Kind, id int) (domain.Item, error)
	Categories(kind domain.Kind) []string
	Activity(ctx context.Context) ([]activity.Item, error)
	Stats(ctx context.Context) ([]domain.Stat, error)
}
