package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const visitorContextKey contextKey = "visitor"

const (
	visitorCookieName   = "campusverse_visitor"
	visitorCookieMaxAge = 365 * 24 * 60 * 60
)

// Visitor returns middleware that assigns every browser a stable anonymous id.
// Accessibility preferences are keyed by it, so they apply before and after login.
func Visitor(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(visitorCookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     visitorCookieName,
					Value:    id,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					Path:     "/",
					MaxAge:   visitorCookieMaxAge,
				})
			}
			next.ServeHTTP(w, r.WithContext(ContextWithVisitor(r.Context(), id)))
		})
	}
}

// VisitorID returns the anonymous visitor id set by Visitor.
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(visitorContextKey).(string)
	return id
}

// ContextWithVisitor returns a context carrying the visitor id.
func ContextWithVisitor(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, visitorContextKey, id)
}
