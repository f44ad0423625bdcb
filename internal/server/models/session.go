package models

import "time"

// Session is a server-side authenticated session row. Remember controls the
// cookie scope only; the server-side expiry is always absolute.
type Session struct {
	ID        string
	AccountID string
	Remember  bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its absolute lifetime.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
