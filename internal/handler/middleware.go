package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"

	"go.uber.org/zap"
)

type contextKey string

const (
	sessionKey   contextKey = "session"
	sessionIDKey contextKey = "sessionID"
)

// now is replaced in tests.
var now = time.Now

// SessionStore is what the screens need from the session store.
type SessionStore interface {
	Load(r *http.Request) (sess *domain.Session, id string, found bool)
	Issue(w http.ResponseWriter, r *http.Request, sess *domain.Session) (string, error)
	Destroy(w http.ResponseWriter, r *http.Request, id string) error
}

// RequireSession is the route guard. It runs once per request: without an
// authenticated, unexpired session the browser is sent to /login and no
// error is shown.
func RequireSession(store SessionStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, id, found := store.Load(r)
			if !found || !sess.IsAuthenticated() {
				logger.Debug("guard: no session", zap.String("path", r.URL.Path))
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			if sess.Expired(now()) {
				logger.Info("guard: session token expired",
					zap.String("path", r.URL.Path),
					zap.Int64("user_id", sess.UserID()),
				)
				sess.Logout()
				if err := store.Destroy(w, r, id); err != nil {
					logger.Warn("guard: destroy session", zap.Error(err))
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			ctx = context.WithValue(ctx, sessionIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin sends non-admin sessions back to the dashboard. It must be
// mounted behind RequireSession.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil || !sess.IsAdmin() {
				logger.Warn("guard: admin screen refused", zap.String("path", r.URL.Path))
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext returns the session the guard attached, or nil.
func SessionFromContext(ctx context.Context) *domain.Session {
	sess, _ := ctx.Value(sessionKey).(*domain.Session)
	return sess
}

func sessionIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}
