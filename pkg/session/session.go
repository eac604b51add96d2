package session

import (
	"strconv"
	"time"
)

// Session binds an opaque id to an optional user and a CSRF token.
type Session struct {
	ID        string    `json:"id"`
	UserID    *int64    `json:"user_id"`
	CSRFToken string    `json:"csrf_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest reports whether no user is bound to the session.
func (s *Session) IsGuest() bool {
	return s.UserID == nil
}

// IsExpired reports whether the session is no longer valid at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Identity is the user id in decimal form, or guest for guest sessions.
func (s *Session) Identity(guest string) string {
	if s.UserID == nil {
		return guest
	}
	return strconv.FormatInt(*s.UserID, 10)
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s *Session) Clone() *Session {
	c := *s
	if s.UserID != nil {
		id := *s.UserID
		c.UserID = &id
	}
	return &c
}
