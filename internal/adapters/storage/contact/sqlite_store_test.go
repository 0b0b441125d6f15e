package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusverse/internal/adapters/storage"
	domain "campusverse/internal/domain/contact"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

func message(id string, at time.Time) domain.Message {
	return domain.Message{
		ID:          id,
		Name:        "Priya",
		Email:       "priya@campus.edu",
		Subject:     domain.SubjectFeedback,
		Message:     "The events page is great.",
		SubmittedAt: at,
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	if err := s.Save(ctx, message("c1", at)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Priya" || got.Subject != domain.SubjectFeedback || !got.SubmittedAt.Equal(at) {
		t.Errorf("got %+v", got)
	}
	if !got.DeliveredAt.IsZero() || got.Attempts != 0 {
		t.Errorf("new message should be undelivered: %+v", got)
	}
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_SaveUpdatesDeliveryState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	m := message("c1", at)
	s.Save(ctx, m)

	m.MarkFailed(errors.New("provider down"))
	m.MarkDelivered(at.Add(time.Minute))
	if err := s.Save(ctx, m); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := s.GetByID(ctx, "c1")
	if got.Attempts != 2 || got.DeliveryError != "" || !got.DeliveredAt.Equal(at.Add(time.Minute)) {
		t.Errorf("got %+v", got)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestSQLiteStore_ListPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	delivered := message("delivered", base)
	delivered.MarkDelivered(base)
	exhausted := message("exhausted", base.Add(time.Minute))
	for i := 0; i < domain.MaxDeliveryAttempts; i++ {
		exhausted.MarkFailed(errors.New("x"))
	}
	for _, m := range []domain.Message{
		message("late", base.Add(3*time.Minute)),
		delivered,
		exhausted,
		message("early", base.Add(2*time.Minute)),
	} {
		if err := s.Save(ctx, m); err != nil {
			t.Fatalf("Save %s: %v", m.ID, err)
		}
	}

	pending, err := s.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != "early" || pending[1].ID != "late" {
		t.Errorf("pending = %+v, want [early late]", pending)
	}

	one, _ := s.ListPending(ctx, 1)
	if len(one) != 1 {
		t.Errorf("limit ignored: %d rows", len(one))
	}
}
