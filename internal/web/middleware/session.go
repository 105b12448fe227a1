package middleware

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/listingdesk/internal/core"
	"github.com/JonMunkholm/listingdesk/internal/logging"
)

type contextKey int

const sessionKey contextKey = iota

// Sessions resolves the browser session from the cookie named cookieName.
// A missing, malformed or reaped cookie gets a fresh session and a new
// cookie. The session is stored in the request context.
func Sessions(manager *core.SessionManager, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(cookieName); err == nil {
				id = c.Value
			}

			sess, created := manager.Get(r.Context(), id)
			if created || sess.ID != id {
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := logging.WithSessionID(r.Context(), sess.ID)
			ctx = context.WithValue(ctx, sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session stored by Sessions.
func SessionFrom(ctx context.Context) (*core.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*core.Session)
	return sess, ok && sess != nil
}
