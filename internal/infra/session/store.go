// Package session keeps per-browser sessions in memory. The browser only
// holds an opaque session id inside a signed cookie; the user record and
// bearer token never leave the server. Restarting the process drops every
// session.
package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/verona-marmoleria/backoffice-bff-go/internal/domain"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/cache"
	"github.com/verona-marmoleria/backoffice-bff-go/internal/infra/observability"
)

const (
	// CookieName is the name of the signed cookie carrying the session id.
	CookieName = "verona_session"
	keyID      = "sid"
)

// Options configure the session cookie.
type Options struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// Store maps session ids to live sessions. Idle sessions expire after TTL;
// every successful Load slides the expiry.
type Store struct {
	cookies  *sessions.CookieStore
	sessions *cache.InMemory[*domain.Session]
	logger   *zap.Logger
}

// NewStore creates a Store. When metrics is non-nil its active-sessions
// gauge follows Count.
func NewStore(opts Options, metrics *observability.Metrics, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	cs := sessions.NewCookieStore([]byte(opts.Secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Store{
		cookies:  cs,
		sessions: cache.New[*domain.Session](opts.TTL),
		logger:   logger,
	}
	if metrics != nil {
		metrics.TrackActiveSessions(s.Count)
	}
	return s
}

// Load returns the session bound to the request's cookie. When the cookie
// is missing, tampered with or points at an expired session, it returns a
// fresh logged-out session and found=false.
func (s *Store) Load(r *http.Request) (sess *domain.Session, id string, found bool) {
	cs, err := s.cookies.Get(r, CookieName)
	if err != nil {
		s.logger.Debug("session: unreadable cookie", zap.Error(err))
		return domain.NewSession(), "", false
	}

	id, _ = cs.Values[keyID].(string)
	if id == "" {
		return domain.NewSession(), "", false
	}

	sess, ok := s.sessions.Get(id)
	if !ok {
		return domain.NewSession(), "", false
	}
	s.sessions.Touch(id)
	return sess, id, true
}

// Issue stores sess under a new id and writes the cookie. A new id is
// minted on every login so an id seen before authentication is never
// promoted.
func (s *Store) Issue(w http.ResponseWriter, r *http.Request, sess *domain.Session) (string, error) {
	id := uuid.NewString()

	cs, _ := s.cookies.New(r, CookieName)
	cs.Values[keyID] = id
	if err := cs.Save(r, w); err != nil {
		return "", err
	}

	s.sessions.Set(id, sess)
	return id, nil
}

// Destroy forgets the session and expires the cookie.
func (s *Store) Destroy(w http.ResponseWriter, r *http.Request, id string) error {
	if id != "" {
		s.sessions.Delete(id)
	}

	cs, _ := s.cookies.New(r, CookieName)
	opts := *s.cookies.Options
	opts.MaxAge = -1
	cs.Options = &opts
	return cs.Save(r, w)
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	return s.sessions.Len()
}

// Close stops the expiry janitor.
func (s *Store) Close() {
	s.sessions.Close()
}
