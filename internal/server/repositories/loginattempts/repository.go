package loginattempts

import (
	"context"

	"github.com/saireecmpo/portal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, attempt *models.LoginAttempt) error
	ListByEmail(ctx context.Context, email string, limit int) ([]*models.LoginAttempt, error)
}
