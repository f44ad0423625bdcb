// Package resettokens provides a PostgreSQL-backed repository for single-use
// password reset tokens.
package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saireecmpo/portal/internal/common"
	"github.com/saireecmpo/portal/internal/dbx"
	"github.com/saireecmpo/portal/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new reset token for accountID. Earlier tokens for the
// same account remain valid until used or expired.
func (r *PostgresRepository) Create(ctx context.Context, accountID string, token string) error {
	query := `
		INSERT INTO password_reset_tokens (account_id, token)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, accountID, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns the reset token row for the given token string.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	query := `
		SELECT id, account_id, token, used, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`
	t := &models.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&t.ID, &t.AccountID, &t.Token, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// MarkUsed flips the used flag. A used token never validates again.
func (r *PostgresRepository) MarkUsed(ctx context.Context, id string) error {
	query := `
		UPDATE password_reset_tokens
		SET used = true
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
