package resettokens

import (
	"context"

	"github.com/saireecmpo/portal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, accountID string, token string) error
	Find(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string) error
}
