package session

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pawhub/internal/models"
	"pawhub/pkg/requestcontext"
)

type contextKey struct{}

// WithSession stores an authenticated session in ctx.
func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session placed by RequireSession.
func FromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(contextKey{}).(models.Session)
	return s, ok
}

// TokenExpired reports whether token carries an exp claim at or before now.
// Tokens without a readable exp claim are left to the API to reject.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}

// LoginRedirect builds loginPath?next=<the requested path and query>.
func LoginRedirect(loginPath string, r *http.Request) string {
	return loginPath + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
}

// RequireSession guards routes that need a signed-in visitor of kind. It waits
// for the visitor's store to finish rehydrating, redirects anyone signed out
// (or holding an expired token) to loginPath, and otherwise puts the session in
// the request context.
func RequireSession(m *Manager, kind models.SessionKind, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			visitorID := requestcontext.VisitorID(ctx)
			if visitorID == "" {
				http.Redirect(w, r, LoginRedirect(loginPath, r), http.StatusSeeOther)
				return
			}

			st := m.Store(kind, visitorID)
			sess, status, err := st.Await(ctx)
			if err != nil {
				m.logger.WarnContext(ctx, "session rehydration did not finish", "kind", string(kind), "error", err)
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			if status == StatusAuthenticated && TokenExpired(sess.AccessToken, m.now()) {
				m.logger.InfoContext(ctx, "session token expired", slog.String("kind", string(kind)))
				if err := st.Clear(ctx); err != nil {
					m.logger.ErrorContext(ctx, "failed to clear expired session", "error", err)
				}
				status = StatusUnauthenticated
			}
			if status != StatusAuthenticated {
				http.Redirect(w, r, LoginRedirect(loginPath, r), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
		})
	}
}
