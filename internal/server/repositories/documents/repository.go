package documents

import (
	"context"

	"github.com/saireecmpo/portal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string, ownerID string) (*models.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	UpdateStatus(ctx context.Context, id string, status string) error
	IncrementViewCount(ctx context.Context, id string) error
	Delete(ctx context.Context, id string, ownerID string) error
}
