package session

import "fmt"

// AuthErrorKind classifies why a login attempt was refused.
type AuthErrorKind int

const (
	// InvalidCredentials means the verifier rejected the email/password pair.
	InvalidCredentials AuthErrorKind = iota + 1
	// NetworkFailure means the verifier could not reach a decision.
	NetworkFailure
	// RateLimited means the client exceeded the login attempt budget.
	RateLimited
)

// String returns the kind name.
func (k AuthErrorKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid_credentials"
	case NetworkFailure:
		return "network_failure"
	case RateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// AuthError is returned by login when the attempt is refused.
// Match with errors.Is against ErrInvalidCredentials, ErrNetworkFailure or ErrRateLimited.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

// Sentinel auth errors, one per kind.
var (
	ErrInvalidCredentials = &AuthError{Kind: InvalidCredentials}
	ErrNetworkFailure     = &AuthError{Kind: NetworkFailure}
	ErrRateLimited        = &AuthError{Kind: RateLimited}
)

// NewAuthError wraps cause under the given kind.
func NewAuthError(kind AuthErrorKind, cause error) *AuthError {
	return &AuthError{Kind: kind, Err: cause}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message(), e.Err)
	}
	return e.Message()
}

// Message is the user-facing text for the error kind.
func (e *AuthError) Message() string {
	switch e.Kind {
	case InvalidCredentials:
		return "invalid email or password"
	case NetworkFailure:
		return "sign-in is temporarily unavailable, please try again"
	case RateLimited:
		return "too many sign-in attempts, please wait a moment"
	default:
		return "sign-in failed"
	}
}

// Unwrap exposes the underlying cause.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches any AuthError of the same kind.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
