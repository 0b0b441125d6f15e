package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "campusverse/internal/adapters/email"
	"campusverse/internal/adapters/http/metrics"
	"campusverse/internal/domain/contact"
)

// Contact outcomes recorded in metrics.
const (
	ContactInvalid   = "invalid"
	ContactStored    = "stored"
	ContactDelivered = "delivered"
	ContactFailed    = "failed"
)

// ContactStore persists contact messages and their forwarding state.
type ContactStore interface {
	Save(ctx context.Context, m contact.Message) error
	ListPending(ctx context.Context, limit int) ([]contact.Message, error)
}

// SubmitContactInput is the raw form submission.
type SubmitContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ContactDeps holds dependencies for the contact orchestrators.
type ContactDeps struct {
	Store        ContactStore
	Sender       emailAdapter.Sender
	SupportEmail string
	Metrics      *metrics.Metrics
	Now          func() time.Time
	GenerateID   func() string
}

// ExecuteSubmitContact validates, stores and forwards a contact message.
// A forwarding failure is not returned: the message stays pending and the
// retry job picks it up.
// PRE: deps.Store and deps.Sender are set
// POST: invalid input returns contact.ValidationErrors and stores nothing
func ExecuteSubmitContact(ctx context.Context, input SubmitContactInput, deps ContactDeps) (contact.Message, error) {
	m := contact.Message{
		Name:    input.Name,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
	}.Normalize()
	if err := m.Validate(); err != nil {
		deps.Metrics.ContactSubmitted(ContactInvalid)
		return contact.Message{}, err
	}

	m.ID = deps.GenerateID()
	m.SubmittedAt = deps.Now()
	if err := deps.Store.Save(ctx, m); err != nil {
		return contact.Message{}, fmt.Errorf("store contact message: %w", err)
	}
	deps.Metrics.ContactSubmitted(ContactStored)
	slog.Info("contact_submitted", "message_id", m.ID, "subject", m.Subject)

	forward(ctx, &m, deps)
	if err := deps.Store.Save(ctx, m); err != nil {
		slog.Error("contact_delivery_state_lost", "message_id", m.ID, "error", err.Error())
	}
	return m, nil
}

// forward sends one message to the support inbox and records the outcome on m.
func forward(ctx context.Context, m *contact.Message, deps ContactDeps) {
	req, err := emailAdapter.ContactRequest(*m, deps.SupportEmail)
	if err == nil {
		_, err = deps.Sender.Send(ctx, req)
	}
	if err != nil {
		m.MarkFailed(err)
		deps.Metrics.ContactSubmitted(ContactFailed)
		slog.Warn("contact_delivery_failed", "message_id", m.ID, "attempt", m.Attempts, "error", err.Error())
		return
	}
	m.MarkDelivered(deps.Now())
	deps.Metrics.ContactSubmitted(ContactDelivered)
}

// RetryContactResult summarises one retry pass.
type RetryContactResult struct {
	Attempted int
	Delivered int
}

// DefaultRetryBatch is how many pending messages one pass forwards.
const DefaultRetryBatch = 20

// ExecuteRetryContactDelivery forwards pending messages in one batch.
// PRE: deps.Store and deps.Sender are set
// POST: every attempted message is saved with its new delivery state
func ExecuteRetryContactDelivery(ctx context.Context, deps ContactDeps) (RetryContactResult, error) {
	pending, err := deps.Store.ListPending(ctx, DefaultRetryBatch)
	if err != nil {
		return RetryContactResult{}, fmt.Errorf("list pending contact messages: %w", err)
	}
	if len(pending) == 0 {
		return RetryContactResult{}, nil
	}

	reqs := make([]emailAdapter.SendRequest, 0, len(pending))
	for _, m := range pending {
		req, err := emailAdapter.ContactRequest(m, deps.SupportEmail)
		if err != nil {
			return RetryContactResult{}, err
		}
		reqs = append(reqs, req)
	}

	// Results cover a prefix of reqs when a later chunk fails.
	results, sendErr := deps.Sender.SendBatch(ctx, reqs)
	res := RetryContactResult{Attempted: len(pending)}
	for i := range pending {
		m := &pending[i]
		if i < len(results) {
			m.MarkDelivered(deps.Now())
			deps.Metrics.ContactSubmitted(ContactDelivered)
			res.Delivered++
		} else {
			cause := sendErr
			if cause == nil {
				cause = fmt.Errorf("provider returned %d results for %d messages", len(results), len(reqs))
			}
			m.MarkFailed(cause)
			deps.Metrics.ContactSubmitted(ContactFailed)
		}
		if err := deps.Store.Save(ctx, *m); err != nil {
			return res, fmt.Errorf("save contact message %s: %w", m.ID, err)
		}
	}
	slog.Info("contact_retry", "attempted", res.Attempted, "delivered", res.Delivered)
	return res, nil
}
