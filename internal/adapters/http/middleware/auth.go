package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"campusverse/internal/adapters/http/metrics"
	"campusverse/internal/application/listutil"
	"campusverse/internal/domain/catalog"
	"campusverse/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const (
	sessionContextKey contextKey = "session"
	tokenContextKey   contextKey = "session_token"
)

// ErrUnknownSession is returned for tokens the store does not hold.
var ErrUnknownSession = errors.New("unknown session")

// Timer is the part of *time.Timer the store needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it via StdAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// StdAfterFunc wraps time.AfterFunc.
func StdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SessionConfig configures a SessionStore. Zero values select defaults.
type SessionConfig struct {
	WelcomeDelay time.Duration // Authenticating dwell, default session.DefaultWelcomeDelay
	TTL          time.Duration // idle-independent lifetime, default 24h
	AfterFunc    AfterFunc     // default StdAfterFunc
	Now          func() time.Time
	Metrics      *metrics.Metrics
}

// DefaultSessionTTL bounds how long a session lives.
const DefaultSessionTTL = 24 * time.Hour

type sessionEntry struct {
	session session.Session
	timer   Timer
	likes   map[catalog.Kind]listutil.LikeSet
}

// SessionStore is an in-memory session store keyed by cookie token.
// It owns the login state machine timers and per-session like-sets.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*sessionEntry
	delay     time.Duration
	ttl       time.Duration
	afterFunc AfterFunc
	now       func() time.Time
	metrics   *metrics.Metrics
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore(cfg SessionConfig) *SessionStore {
	ss := &SessionStore{
		sessions:  make(map[string]*sessionEntry),
		delay:     cfg.WelcomeDelay,
		ttl:       cfg.TTL,
		afterFunc: cfg.AfterFunc,
		now:       cfg.Now,
		metrics:   cfg.Metrics,
	}
	if ss.delay <= 0 {
		ss.delay = session.DefaultWelcomeDelay
	}
	if ss.ttl <= 0 {
		ss.ttl = DefaultSessionTTL
	}
	if ss.afterFunc == nil {
		ss.afterFunc = StdAfterFunc
	}
	if ss.now == nil {
		ss.now = time.Now
	}
	return ss
}

// WelcomeDelay returns the configured Authenticating dwell.
func (ss *SessionStore) WelcomeDelay() time.Duration {
	return ss.delay
}

// TTL returns the configured session lifetime.
func (ss *SessionStore) TTL() time.Duration {
	return ss.ttl
}

// Create stores a new LoggedOut session and returns the token.
// POST: Session is stored, token is returned
func (ss *SessionStore) Create() (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = &sessionEntry{session: session.New(ss.now())}
	ss.metrics.SetActiveSessions(len(ss.sessions))
	return token, nil
}

// Get retrieves a session by token.
// POST: Returns session if known and not expired; expired sessions are removed
func (ss *SessionStore) Get(token string) (session.Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	e, ok := ss.lookupLocked(token)
	if !ok {
		return session.Session{}, false
	}
	return e.session, true
}

func (ss *SessionStore) lookupLocked(token string) (*sessionEntry, bool) {
	e, ok := ss.sessions[token]
	if !ok {
		return nil, false
	}
	if e.session.IsExpired(ss.now(), ss.ttl) {
		ss.dropLocked(token, e)
		return nil, false
	}
	return e, true
}

func (ss *SessionStore) dropLocked(token string, e *sessionEntry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(ss.sessions, token)
	ss.metrics.SetActiveSessions(len(ss.sessions))
}

// BeginLogin moves the session to Authenticating and schedules its promotion.
// A session already LoggedIn is returned unchanged. A session already
// Authenticating restarts the dwell under a new generation.
// PRE: token was returned by Create
// POST: at most one promotion timer is pending for token
func (ss *SessionStore) BeginLogin(token, email string) (session.Session, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	e, ok := ss.lookupLocked(token)
	if !ok {
		return session.Session{}, ErrUnknownSession
	}
	if e.session.IsAuthenticated() {
		return e.session, nil
	}
	next, err := e.session.BeginLogin(email)
	if err != nil {
		return e.session, err
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	ss.transitionLocked(e, next)
	gen := next.Generation
	e.timer = ss.afterFunc(ss.delay, func() { ss.completeLogin(token, gen) })
	return next, nil
}

// completeLogin runs when the welcome delay elapses.
// A logout or newer login in between leaves the session untouched.
func (ss *SessionStore) completeLogin(token string, gen uint64) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	e, ok := ss.sessions[token]
	if !ok {
		return
	}
	next, err := e.session.CompleteLogin(gen)
	if err != nil {
		slog.Debug("auth_event", "event", "login_promotion_skipped", "reason", err.Error())
		return
	}
	e.timer = nil
	ss.transitionLocked(e, next)
	slog.Info("auth_event", "event", "login_success", "email", next.User.Email)
}

// Logout clears the session synchronously and cancels any pending promotion.
// POST: State == LoggedOut; like-sets are cleared
func (ss *SessionStore) Logout(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	e, ok := ss.sessions[token]
	if !ok {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.likes = nil
	ss.transitionLocked(e, e.session.Logout())
}

func (ss *SessionStore) transitionLocked(e *sessionEntry, next session.Session) {
	if e.session.State != next.State {
		ss.metrics.SessionTransition(e.session.State.String(), next.State.String())
	}
	e.session = next
}

// Likes returns the like-set for kind.
func (ss *SessionStore) Likes(token string, kind catalog.Kind) listutil.LikeSet {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	e, ok := ss.lookupLocked(token)
	if !ok {
		return nil
	}
	return e.likes[kind]
}

// ToggleLike flips id in the like-set for kind and returns the new set.
// PRE: session is LoggedIn
func (ss *SessionStore) ToggleLike(token string, kind catalog.Kind, id int) (listutil.LikeSet, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	e, ok := ss.lookupLocked(token)
	if !ok || !e.session.IsAuthenticated() {
		return nil, ErrUnknownSession
	}
	if e.likes == nil {
		e.likes = make(map[catalog.Kind]listutil.LikeSet)
	}
	next := e.likes[kind].Toggle(id)
	e.likes[kind] = next
	return next, nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (ss *SessionStore) Sweep() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	now := ss.now()
	removed := 0
	for token, e := range ss.sessions {
		if e.session.IsExpired(now, ss.ttl) {
			ss.dropLocked(token, e)
			removed++
		}
	}
	return removed
}

// Len returns the number of sessions held.
func (ss *SessionStore) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

const sessionCookieName = "campusverse_session"

// Auth returns middleware that extracts the session from the cookie and sets it in context.
// It does NOT block unauthenticated requests; use RequireAuth for that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err == nil && cookie.Value != "" {
				if sess, ok := sessions.Get(cookie.Value); ok {
					ctx := context.WithValue(r.Context(), sessionContextKey, sess)
					ctx = context.WithValue(ctx, tokenContextKey, cookie.Value)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns middleware that blocks requests from sessions that are not LoggedIn.
// Browsers are redirected to /login; JSON clients get 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := GetSessionFromContext(r.Context())
		if !ok || !sess.IsAuthenticated() {
			if wantsJSON(r) {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(session.Session)
	return sess, ok
}

// GetTokenFromContext extracts the session token from the request context.
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok && token != ""
}

// CurrentUser returns the logged-in user, if any.
func CurrentUser(ctx context.Context) (session.User, bool) {
	sess, ok := GetSessionFromContext(ctx)
	if !ok || sess.User == nil {
		return session.User{}, false
	}
	return *sess.User, true
}

// SetSessionCookie sets the session cookie on the response.
// POST: the cookie expires with the session, after ttl
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// ContextWithSession returns a context with the given session and token set.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, token string, sess session.Session) context.Context {
	ctx = context.WithValue(ctx, sessionContextKey, sess)
	return context.WithValue(ctx, tokenContextKey, token)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
