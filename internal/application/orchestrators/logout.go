package orchestrators

import (
	"context"
	"log/slog"
)

// LogoutSessions is the session store surface needed by Logout.
type LogoutSessions interface {
	Logout(token string)
}

// LogoutInput carries input for the logout orchestrator.
type LogoutInput struct {
	Token string
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Sessions LogoutSessions
}

// ExecuteLogout clears the session synchronously.
// POST: session is LoggedOut and any pending promotion is void
func ExecuteLogout(_ context.Context, input LogoutInput, deps LogoutDeps) error {
	deps.Sessions.Logout(input.Token)
	slog.Info("auth_event", "event", "logout")
	return nil
}
