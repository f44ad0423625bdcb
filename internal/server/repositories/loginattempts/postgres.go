// Package loginattempts stores the append-only login audit trail.
package loginattempts

import (
	"context"
	"fmt"

	"github.com/saireecmpo/portal/internal/dbx"
	"github.com/saireecmpo/portal/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
// Rows are never updated or deleted.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends one attempt record. The email is stored exactly as
// submitted by the client, whether or not an account exists.
func (r *PostgresRepository) Create(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (email, ip_address, user_agent, successful)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query,
		attempt.Email, attempt.IPAddress, attempt.UserAgent, attempt.Successful); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByEmail returns the most recent attempts for an email, newest first.
func (r *PostgresRepository) ListByEmail(ctx context.Context, email string, limit int) ([]*models.LoginAttempt, error) {
	query := `
		SELECT id, email, ip_address, user_agent, successful, created_at
		FROM login_attempts
		WHERE email = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var attempts []*models.LoginAttempt
	for rows.Next() {
		a := &models.LoginAttempt{}
		if err := rows.Scan(&a.ID, &a.Email, &a.IPAddress, &a.UserAgent, &a.Successful, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return attempts, nil
}
