package conversionlogs

import (
	"context"

	"github.com/saireecmpo/portal/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, log *models.ConversionLog) error
	ListByDocument(ctx context.Context, documentID string) ([]*models.ConversionLog, error)
}
