// Package models defines the persistent data shapes shared by repositories
// and services.
package models

import "time"

// Account is a dashboard user identified by email.
//
// FailedLoginAttempts is recorded for auditing but is not enforced as a
// lockout; every attempt is additionally written to login_attempts.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	Position     string    `json:"position"`
	Department   string    `json:"department"`

	MFAEnabled bool   `json:"mfa_enabled"`
	MFASecret  string `json:"-"`

	FailedLoginAttempts int       `json:"-"`
	PasswordChangedAt   time.Time `json:"password_changed_at"`
	CreatedAt           time.Time `json:"created_at"`
}

// FullName returns the display name of the account.
func (a *Account) FullName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
