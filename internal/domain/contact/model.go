package contact

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Subject values accepted by the form.
const (
	SubjectBug         = "bug"
	SubjectFeedback    = "feedback"
	SubjectPartnership = "partnership"
	SubjectOther       = "other"
)

// Message length bounds, counted in runes after trimming.
const (
	MinMessageLength = 10
	MaxMessageLength = 500
)

// SubjectOption pairs a subject value with its label.
type SubjectOption struct {
	Value string
	Label string
}

// Subjects lists the selectable subjects in display order.
var Subjects = []SubjectOption{
	{Value: SubjectBug, Label: "Bug Report"},
	{Value: SubjectFeedback, Label: "Feedback"},
	{Value: SubjectPartnership, Label: "Partnership"},
	{Value: SubjectOther, Label: "Other"},
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Field-level validation messages shown under each input.
const (
	MsgNameRequired    = "Name is required"
	MsgEmailRequired   = "Email is required"
	MsgEmailInvalid    = "Please enter a valid email address"
	MsgSubjectRequired = "Please select a subject"
	MsgMessageRequired = "Message is required"
	MsgMessageTooShort = "Message must be at least 10 characters long"
	MsgMessageTooLong  = "Message must be 500 characters or fewer"
)

// MaxDeliveryAttempts bounds how often forwarding a message is retried.
const MaxDeliveryAttempts = 5

// Message is a submitted contact form and its forwarding state.
type Message struct {
	ID          string
	Name        string
	Email       string
	Subject     string
	Message     string
	SubmittedAt time.Time

	DeliveredAt   time.Time // zero until forwarded
	DeliveryError string    // last forwarding failure
	Attempts      int
}

// ValidationErrors maps a form field name to its message.
type ValidationErrors map[string]string

// Error implements error with a stable field order.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "invalid contact message: " + strings.Join(parts, "; ")
}

// Normalize trims surrounding whitespace from every text field.
func (m Message) Normalize() Message {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	return m
}

// Validate checks every field and reports all problems at once.
// PRE: m has been normalized
// POST: Returns nil if valid, ValidationErrors otherwise
func (m Message) Validate() error {
	errs := ValidationErrors{}
	if m.Name == "" {
		errs["name"] = MsgNameRequired
	}
	switch {
	case m.Email == "":
		errs["email"] = MsgEmailRequired
	case !emailPattern.MatchString(m.Email):
		errs["email"] = MsgEmailInvalid
	}
	if !IsValidSubject(m.Subject) {
		errs["subject"] = MsgSubjectRequired
	}
	n := utf8.RuneCountInString(m.Message)
	switch {
	case n == 0:
		errs["message"] = MsgMessageRequired
	case n < MinMessageLength:
		errs["message"] = MsgMessageTooShort
	case n > MaxMessageLength:
		errs["message"] = MsgMessageTooLong
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsValidSubject reports whether s is one of Subjects.
func IsValidSubject(s string) bool {
	for _, opt := range Subjects {
		if opt.Value == s {
			return true
		}
	}
	return false
}

// SubjectLabel returns the display label for a subject value.
func SubjectLabel(s string) string {
	for _, opt := range Subjects {
		if opt.Value == s {
			return opt.Label
		}
	}
	return s
}

// MarkDelivered records a successful forward.
// POST: IsPending() is false
func (m *Message) MarkDelivered(at time.Time) {
	m.Attempts++
	m.DeliveredAt = at
	m.DeliveryError = ""
}

// MarkFailed records a failed forward attempt.
func (m *Message) MarkFailed(err error) {
	m.Attempts++
	m.DeliveryError = err.Error()
}

// IsPending reports whether the message still awaits forwarding.
// INVARIANT: a message stops being retried after MaxDeliveryAttempts
func (m Message) IsPending() bool {
	return m.DeliveredAt.IsZero() && m.Attempts < MaxDeliveryAttempts
}
