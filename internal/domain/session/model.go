package session

import (
	"errors"
	"strings"
	"time"
)

// State is the position of a browser session in the login state machine.
type State int

// Session states. LoggedOut --login--> Authenticating --delay--> LoggedIn --logout--> LoggedOut.
const (
	LoggedOut State = iota
	Authenticating
	LoggedIn
)

// String returns the lower-case state name used in JSON and logs.
func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case Authenticating:
		return "authenticating"
	case LoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

// DefaultWelcomeDelay is how long a session dwells in Authenticating.
const DefaultWelcomeDelay = 3500 * time.Millisecond

// Canned profile values merged with the email supplied at login.
const (
	CannedName      = "Alex Johnson"
	CannedAvatarRef = "/static/placeholder.svg"
)

// Domain errors
var (
	ErrEmptyEmail        = errors.New("email cannot be empty")
	ErrNotAuthenticating = errors.New("session is not authenticating")
	ErrStaleGeneration   = errors.New("login was superseded")
)

// User is the profile of a logged-in visitor.
type User struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarRef string `json:"avatar"`
}

// FirstName returns the first word of the user's name.
// INVARIANT: User fields are not mutated
func (u User) FirstName() string {
	fields := strings.Fields(u.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Session holds the login state of one browser.
// INVARIANT: User is non-nil iff State == LoggedIn
type Session struct {
	State        State
	User         *User
	PendingEmail string
	Generation   uint64
	CreatedAt    time.Time
}

// New returns an empty LoggedOut session.
func New(now time.Time) Session {
	return Session{State: LoggedOut, CreatedAt: now}
}

// IsAuthenticated reports whether protected views may be rendered.
func (s Session) IsAuthenticated() bool {
	return s.State == LoggedIn
}

// BeginLogin moves the session into Authenticating and bumps the generation.
// Any promotion scheduled for an earlier generation becomes stale.
// PRE: email is non-empty
// POST: State == Authenticating, User == nil, Generation incremented
func (s Session) BeginLogin(email string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return s, ErrEmptyEmail
	}
	s.State = Authenticating
	s.User = nil
	s.PendingEmail = email
	s.Generation++
	return s, nil
}

// CompleteLogin promotes an Authenticating session to LoggedIn.
// PRE: gen is the generation returned when the promotion was scheduled
// POST: State == LoggedIn with the canned profile merged with PendingEmail
func (s Session) CompleteLogin(gen uint64) (Session, error) {
	if s.State != Authenticating {
		return s, ErrNotAuthenticating
	}
	if s.Generation != gen {
		return s, ErrStaleGeneration
	}
	s.State = LoggedIn
	s.User = &User{
		Name:      CannedName,
		Email:     s.PendingEmail,
		AvatarRef: CannedAvatarRef,
	}
	s.PendingEmail = ""
	return s, nil
}

// Logout clears the session synchronously and invalidates pending promotions.
// POST: State == LoggedOut, User == nil, Generation incremented
func (s Session) Logout() Session {
	s.State = LoggedOut
	s.User = nil
	s.PendingEmail = ""
	s.Generation++
	return s
}

// IsExpired reports whether the session outlived ttl.
func (s Session) IsExpired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.CreatedAt) > ttl
}
