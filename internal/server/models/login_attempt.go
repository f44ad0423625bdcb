package models

import "time"

// LoginAttempt is an immutable audit record written for every login attempt,
// successful or not. Email is the submitted value, not a validated account.
type LoginAttempt struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	Successful bool      `json:"successful"`
	CreatedAt  time.Time `json:"created_at"`
}
