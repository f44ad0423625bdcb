// Package documents provides a PostgreSQL-backed repository for uploaded
// documents and their conversion artifacts. All reads and deletes are
// scoped to the owning account.
package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saireecmpo/portal/internal/common"
	"github.com/saireecmpo/portal/internal/dbx"
	"github.com/saireecmpo/portal/internal/server/models"
)

const documentColumns = `id, account_id, title, source_key, source_name, pdf_key, html_key,
		html_content, status, error_message, page_count, view_count, processed_at, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanDocument(row interface{ Scan(...any) error }) (*models.Document, error) {
	d := &models.Document{}
	var processedAt sql.NullTime
	err := row.Scan(&d.ID, &d.AccountID, &d.Title, &d.SourceKey, &d.SourceName,
		&d.PDFKey, &d.HTMLKey, &d.HTMLContent, &d.Status, &d.ErrorMessage,
		&d.PageCount, &d.ViewCount, &processedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if processedAt.Valid {
		d.ProcessedAt = processedAt.Time
	}
	return d, nil
}

// Create inserts a new document in the pending state and fills in its
// server-assigned fields.
func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (account_id, title, source_key, source_name, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		doc.AccountID, doc.Title, doc.SourceKey, doc.SourceName, doc.Status).
		Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the document only if it belongs to ownerID.
// A document owned by someone else is indistinguishable from a missing one.
func (r *PostgresRepository) GetByID(ctx context.Context, id string, ownerID string) (*models.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND account_id = $2
	`
	return scanDocument(r.db.QueryRowContext(ctx, query, id, ownerID))
}

// ListByOwner returns all of the account's documents, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE account_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return docs, nil
}

// Update persists the mutable conversion fields after processing.
func (r *PostgresRepository) Update(ctx context.Context, doc *models.Document) error {
	query := `
		UPDATE documents
		SET pdf_key = $2, html_key = $3, html_content = $4, status = $5,
			error_message = $6, page_count = $7, processed_at = $8, updated_at = now()
		WHERE id = $1
	`
	var processedAt sql.NullTime
	if !doc.ProcessedAt.IsZero() {
		processedAt = sql.NullTime{Time: doc.ProcessedAt, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.PDFKey, doc.HTMLKey, doc.HTMLContent, doc.Status,
		doc.ErrorMessage, doc.PageCount, processedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdateStatus moves the document to a new pipeline state.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	query := `
		UPDATE documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// IncrementViewCount bumps the counter in a single statement so concurrent
// views never lose an increment.
func (r *PostgresRepository) IncrementViewCount(ctx context.Context, id string) error {
	query := `
		UPDATE documents
		SET view_count = view_count + 1
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the document if it belongs to ownerID. Conversion logs go
// with it via the foreign key cascade. Returns common.ErrorNotFound when no
// owned row matched.
func (r *PostgresRepository) Delete(ctx context.Context, id string, ownerID string) error {
	query := `
		DELETE FROM documents
		WHERE id = $1 AND account_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
