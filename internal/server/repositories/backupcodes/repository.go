package backupcodes

import "context"

type Repository interface {
	Replace(ctx context.Context, accountID string, codes []string) error
	Consume(ctx context.Context, accountID string, code string) (bool, error)
	Count(ctx context.Context, accountID string) (int, error)
	DeleteAll(ctx context.Context, accountID string) error
}
