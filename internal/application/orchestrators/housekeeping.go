package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// SessionSweeper drops expired sessions.
type SessionSweeper interface {
	Sweep() int
}

// VisitorSweeper forgets rate-limit buckets idle for longer than idle.
type VisitorSweeper interface {
	Sweep(idle time.Duration) int
}

// HousekeepingDeps holds dependencies for the periodic cleanup job.
type HousekeepingDeps struct {
	Sessions SessionSweeper
	Limiters []VisitorSweeper
	Contact  ContactDeps // zero Store skips delivery retries
	IdleFor  time.Duration
}

// HousekeepingResult reports what one pass removed or retried.
type HousekeepingResult struct {
	SessionsExpired int
	VisitorsDropped int
	Contact         RetryContactResult
}

// DefaultLimiterIdle is how long a rate-limit bucket may sit unused.
const DefaultLimiterIdle = 10 * time.Minute

// ExecuteHousekeeping sweeps expired sessions and idle limiter buckets, then
// retries pending contact deliveries.
// POST: no expired session remains in the store
func ExecuteHousekeeping(ctx context.Context, deps HousekeepingDeps) (HousekeepingResult, error) {
	idle := deps.IdleFor
	if idle <= 0 {
		idle = DefaultLimiterIdle
	}
	var res HousekeepingResult
	res.SessionsExpired = deps.Sessions.Sweep()
	for _, l := range deps.Limiters {
		res.VisitorsDropped += l.Sweep(idle)
	}

	if deps.Contact.Store != nil {
		retried, err := ExecuteRetryContactDelivery(ctx, deps.Contact)
		res.Contact = retried
		if err != nil {
			return res, err
		}
	}

	slog.Debug("housekeeping_done",
		"sessions_expired", res.SessionsExpired,
		"visitors_dropped", res.VisitorsDropped,
		"contact_attempted", res.Contact.Attempted,
	)
	return res, nil
}
