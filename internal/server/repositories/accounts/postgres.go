// Package accounts provides a PostgreSQL-backed repository for dashboard
// accounts.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saireecmpo/portal/internal/common"
	"github.com/saireecmpo/portal/internal/dbx"
	"github.com/saireecmpo/portal/internal/server/models"
)

const accountColumns = `id, email, password_hash, first_name, last_name, phone, position, department,
	 mfa_enabled, mfa_secret, failed_login_attempts, password_changed_at, created_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.Phone,
		&a.Position, &a.Department, &a.MFAEnabled, &a.MFASecret, &a.FailedLoginAttempts,
		&a.PasswordChangedAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// Create inserts a new account and fills in the generated ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (email, password_hash, first_name, last_name, phone, position, department)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, password_changed_at, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.Email, account.PasswordHash, account.FirstName, account.LastName,
		account.Phone, account.Position, account.Department).
		Scan(&account.ID, &account.PasswordChangedAt, &account.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

// GetByEmail returns the account with the given email.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

// GetByID returns the account with the given ID.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// UpdateProfile updates the mutable profile fields of an account.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET first_name = $2, last_name = $3, phone = $4, position = $5, department = $6
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, account.ID, account.FirstName, account.LastName,
		account.Phone, account.Position, account.Department); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdatePassword sets a new password hash and stamps password_changed_at.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, password_changed_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SetMFA toggles MFA for an account and stores (or clears) the shared secret.
func (r *PostgresRepository) SetMFA(ctx context.Context, id string, enabled bool, secret string) error {
	query := `
		UPDATE accounts
		SET mfa_enabled = $2, mfa_secret = $3
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, enabled, secret); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
