// Package backupcodes stores unconsumed MFA recovery codes, one row per
// code. Consumption is a single conditional DELETE, so two concurrent
// requests can never both redeem the same code.
package backupcodes

import (
	"context"
	"fmt"

	"github.com/saireecmpo/portal/internal/dbx"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Replace removes all codes for the account and inserts the new set.
// Callers should run this inside dbx.WithTx.
func (r *PostgresRepository) Replace(ctx context.Context, accountID string, codes []string) error {
	if err := r.DeleteAll(ctx, accountID); err != nil {
		return err
	}
	query := `
		INSERT INTO mfa_backup_codes (account_id, code)
		VALUES ($1, $2)
	`
	for _, code := range codes {
		if _, err := r.db.ExecContext(ctx, query, accountID, code); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

// Consume atomically removes one code if it is present and reports whether
// it was. Fails closed: an absent code (or an empty set) returns false.
func (r *PostgresRepository) Consume(ctx context.Context, accountID string, code string) (bool, error) {
	query := `
		DELETE FROM mfa_backup_codes
		WHERE account_id = $1 AND code = $2
	`
	res, err := r.db.ExecContext(ctx, query, accountID, code)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of unconsumed codes remaining for the account.
func (r *PostgresRepository) Count(ctx context.Context, accountID string) (int, error) {
	query := `
		SELECT count(*) FROM mfa_backup_codes
		WHERE account_id = $1
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// DeleteAll removes every code for the account (MFA disable).
func (r *PostgresRepository) DeleteAll(ctx context.Context, accountID string) error {
	query := `
		DELETE FROM mfa_backup_codes
		WHERE account_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
