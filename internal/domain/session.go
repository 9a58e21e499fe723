package domain

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the current authenticated identity of one browser.
//
// It has exactly two mutating entry points, Login and Logout; everything
// else is a read accessor. IsAuthenticated is true iff the token is non-empty.
// IsAdmin is captured from the user record at login and never re-checked.
type Session struct {
	mu        sync.RWMutex
	user      *User
	token     string
	expiresAt time.Time
}

// NewSession returns a logged-out session.
func NewSession() *Session {
	return &Session{}
}

// Login stores the identity returned by the remote API. A login without a
// token is rejected and leaves the session logged out.
func (s *Session) Login(user User, token string) error {
	if token == "" {
		return &ErrValidation{Field: "token", Message: "respuesta de login sin token"}
	}

	u := user
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.token = token
	s.expiresAt = tokenExpiry(token)
	return nil
}

// Logout resets every field to its zero state. Calling it on a logged-out
// session is a no-op.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.expiresAt = time.Time{}
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the user snapshot taken at login, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0
	}
	return s.user.UserID
}

func (s *Session) BranchID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0
	}
	return s.user.BranchID
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && bool(s.user.IsAdmin)
}

// ExpiresAt reports the token's exp claim when the token is a JWT.
// The zero time means the token carries no known expiry.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Expired reports whether the token is known to have expired at now.
func (s *Session) Expired(now time.Time) bool {
	exp := s.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}

// tokenExpiry peeks at the exp claim without verifying the signature; the
// BFF does not own the signing key, it only avoids sending dead tokens.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
