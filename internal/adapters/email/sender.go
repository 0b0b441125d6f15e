package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"campusverse/internal/domain/contact"
)

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To      []string // Recipient email addresses
	From    string   // Sender address, e.g. "CampusVerse <noreply@campusverse.edu>"; empty uses the sender default
	Subject string
	HTML    string // HTML body
	ReplyTo string // Reply-to address
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // Provider's message ID for tracking
	SentAt    time.Time // When the send was accepted
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}

var contactTemplate = template.Must(template.New("contact").Parse(`<h2>New contact message: {{.Label}}</h2>
<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
<p><strong>Submitted:</strong> {{.SubmittedAt}}</p>
<blockquote style="white-space: pre-wrap">{{.Message}}</blockquote>
<p style="color:#666">Message ID {{.ID}}</p>`))

// ContactRequest builds the support-inbox email for a contact form message.
// The visitor's address becomes the Reply-To so support can answer directly.
// PRE: m has passed Validate; supportEmail is non-empty
// POST: HTML body escapes all visitor input
func ContactRequest(m contact.Message, supportEmail string) (SendRequest, error) {
	label := contact.SubjectLabel(m.Subject)
	var buf bytes.Buffer
	err := contactTemplate.Execute(&buf, struct {
		Label, Name, Email, Message, ID, SubmittedAt string
	}{
		Label:       label,
		Name:        m.Name,
		Email:       m.Email,
		Message:     m.Message,
		ID:          m.ID,
		SubmittedAt: m.SubmittedAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return SendRequest{}, fmt.Errorf("render contact email: %w", err)
	}
	return SendRequest{
		To:      []string{supportEmail},
		Subject: fmt.Sprintf("[CampusVerse] %s from %s", label, m.Name),
		HTML:    buf.String(),
		ReplyTo: m.Email,
	}, nil
}
