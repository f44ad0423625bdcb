package models

import "time"

// PasswordResetToken authorizes a password change without the original
// password. Single-use, expires 24h after creation. Minting a new token does
// not invalidate earlier ones.
type PasswordResetToken struct {
	ID        string
	AccountID string
	Token     string
	Used      bool
	CreatedAt time.Time
}

// Valid reports whether the token can still be redeemed at time now given
// the configured time-to-live.
func (t *PasswordResetToken) Valid(now time.Time, ttl time.Duration) bool {
	if t.Used {
		return false
	}
	return now.Before(t.CreatedAt.Add(ttl))
}
