package web

import (
	"errors"
	"log/slog"
	"net/http"

	"campusverse/internal/adapters/http/middleware"
	"campusverse/internal/application/orchestrators"
	"campusverse/internal/domain/session"
)

// loginView is the data for login.html.
type loginView struct {
	Email string
	Error string
}

// welcomeView is the data for welcome.html.
type welcomeView struct {
	DelayMS        int64
	RefreshSeconds int64
}

// sessionState is the JSON body of GET /api/session.
type sessionState struct {
	State         string        `json:"state"`
	Authenticated bool          `json:"authenticated"`
	User          *session.User `json:"user,omitempty"`
}

// handleLoginPage shows the form, or the welcome screen while the session
// is Authenticating. A LoggedIn session goes straight home.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	switch {
	case ok && sess.IsAuthenticated():
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case ok && sess.State == session.Authenticating:
		delay := s.deps.Sessions.WelcomeDelay()
		s.render(w, r, http.StatusOK, "welcome.html", "Welcome", welcomeView{
			DelayMS:        delay.Milliseconds(),
			RefreshSeconds: int64(delay.Seconds()) + 1,
		})
	default:
		s.render(w, r, http.StatusOK, "login.html", "Sign in", loginView{})
	}
}

// handleLogin handles POST /login.
// On success the browser is sent back to GET /login, which shows the welcome screen.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	token, ok := middleware.GetTokenFromContext(r.Context())
	if !ok {
		created, err := s.deps.Sessions.Create()
		if err != nil {
			internalError(w, err)
			return
		}
		token = created
		middleware.SetSessionCookie(w, token, s.deps.Sessions.TTL(), s.deps.Secure)
	}

	var limiter orchestrators.AttemptLimiter
	if s.deps.LoginLimiter != nil {
		limiter = s.deps.LoginLimiter
	}
	email := r.FormValue("email")
	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Token:    token,
		Email:    email,
		Password: r.FormValue("password"),
		ClientIP: middleware.ClientIP(r),
	}, orchestrators.LoginDeps{
		Sessions: s.deps.Sessions,
		Verifier: s.deps.Verifier,
		Limiter:  limiter,
	})
	if err != nil {
		s.loginFailed(w, r, email, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusAccepted, stateOf(result.Session))
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// loginFailed re-renders the form with the error inline.
func (s *Server) loginFailed(w http.ResponseWriter, r *http.Request, email string, err error) {
	status := http.StatusBadRequest
	view := loginView{Email: email}

	var authErr *session.AuthError
	switch {
	case errors.Is(err, session.ErrEmptyEmail):
		view.Error = "Please enter your email address"
	case errors.As(err, &authErr):
		view.Error = authErr.Message()
		switch authErr.Kind {
		case session.InvalidCredentials:
			status = http.StatusUnauthorized
		case session.RateLimited:
			status = http.StatusTooManyRequests
		default:
			status = http.StatusServiceUnavailable
		}
	case errors.Is(err, middleware.ErrUnknownSession):
		middleware.ClearSessionCookie(w, s.deps.Secure)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	default:
		internalError(w, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": view.Error})
		return
	}
	s.render(w, r, status, "login.html", "Sign in", view)
}

// handleLogout handles POST /logout. The session entry is kept, LoggedOut.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.GetTokenFromContext(r.Context()); ok {
		if err := orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutInput{Token: token},
			orchestrators.LogoutDeps{Sessions: s.deps.Sessions}); err != nil {
			internalError(w, err)
			return
		}
	} else {
		slog.Debug("auth_event", "event", "logout", "reason", "no_session")
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleSessionState reports the login state; the welcome screen polls it.
func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, sessionState{State: session.LoggedOut.String()})
		return
	}
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func stateOf(sess session.Session) sessionState {
	return sessionState{
		State:         sess.State.String(),
		Authenticated: sess.IsAuthenticated(),
		User:          sess.User,
	}
}
