// Package conversionlogs stores the append-only record of conversion
// pipeline steps. Entries are never updated or removed individually;
// they are deleted only by cascade when their document goes away.
package conversionlogs

import (
	"context"
	"fmt"

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

// Append writes one pipeline step entry.
func (r *PostgresRepository) Append(ctx context.Context, log *models.ConversionLog) error {
	query := `
		INSERT INTO conversion_logs (document_id, action, message)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, log.DocumentID, log.Action, log.Message); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByDocument returns the document's pipeline history in the order the
// steps happened.
func (r *PostgresRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.ConversionLog, error) {
	query := `
		SELECT id, document_id, action, message, created_at
		FROM conversion_logs
		WHERE document_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var logs []*models.ConversionLog
	for rows.Next() {
		l := &models.ConversionLog{}
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.Action, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return logs, nil
}
