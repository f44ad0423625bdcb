package accounts

import (
	"context"

	"github.com/saireecmpo/portal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	UpdateProfile(ctx context.Context, account *models.Account) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	SetMFA(ctx context.Context, id string, enabled bool, secret string) error
}
