package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"campusverse/internal/domain/session"
)

// CredentialVerifier decides whether an email/password pair may sign in.
// Rejections return session.ErrInvalidCredentials; any other error means no
// decision could be reached.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) error
}

// AcceptAllVerifier admits every login attempt.
type AcceptAllVerifier struct{}

// Verify always succeeds.
func (AcceptAllVerifier) Verify(context.Context, string, string) error { return nil }

// PassphraseVerifier admits any email presented with one shared passphrase.
type PassphraseVerifier struct {
	hash []byte
}

// NewPassphraseVerifier creates a verifier for a bcrypt hash of the passphrase.
// PRE: hash is a bcrypt hash
func NewPassphraseVerifier(hash string) PassphraseVerifier {
	return PassphraseVerifier{hash: []byte(hash)}
}

// Verify compares password against the configured hash.
// POST: mismatch returns session.ErrInvalidCredentials
func (v PassphraseVerifier) Verify(ctx context.Context, _, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := bcrypt.CompareHashAndPassword(v.hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return session.ErrInvalidCredentials
	}
	return err
}

// LoginSessions is the session store surface needed by Login.
type LoginSessions interface {
	BeginLogin(token, email string) (session.Session, error)
}

// AttemptLimiter bounds login attempts per client.
type AttemptLimiter interface {
	Allow(key string) bool
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Token    string
	Email    string
	Password string
	ClientIP string
}

// LoginResult carries the session after a login was accepted.
type LoginResult struct {
	Session session.Session
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Sessions LoginSessions
	Verifier CredentialVerifier
	Limiter  AttemptLimiter // nil disables attempt limiting
}

// ExecuteLogin verifies credentials and starts the welcome dwell.
// PRE: input.Token names a live session
// POST: on success the session is Authenticating (or already LoggedIn);
// refusals are *session.AuthError
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if deps.Limiter != nil && !deps.Limiter.Allow(input.ClientIP) {
		slog.Warn("auth_event", "event", "login_blocked", "reason", "rate_limited", "ip", input.ClientIP)
		return LoginResult{}, session.ErrRateLimited
	}

	email := strings.TrimSpace(input.Email)
	if email == "" {
		return LoginResult{}, session.ErrEmptyEmail
	}

	if err := deps.Verifier.Verify(ctx, email, input.Password); err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "invalid_credentials")
			return LoginResult{}, err
		}
		slog.Error("auth_event", "event", "login_failed", "email", email, "reason", "verifier_error", "error", err.Error())
		return LoginResult{}, session.NewAuthError(session.NetworkFailure, err)
	}

	sess, err := deps.Sessions.BeginLogin(input.Token, email)
	if err != nil {
		return LoginResult{}, err
	}
	slog.Info("auth_event", "event", "login_started", "email", email, "state", sess.State.String())
	return LoginResult{Session: sess}, nil
}
