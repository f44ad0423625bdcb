package content

import (
	"context"

	"github.com/saireecmpo/portal/internal/server/models"
)

type Repository interface {
	CreatePost(ctx context.Context, post *models.BlogPost) error
	GetPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	ListPosts(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error)
	UpdatePost(ctx context.Context, post *models.BlogPost) error
	DeletePost(ctx context.Context, id string) error
	IncrementPostViewCount(ctx context.Context, id string) error

	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	ListAnnouncements(ctx context.Context, activeOnly bool) ([]*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error

	CreateActivity(ctx context.Context, a *models.Activity) error
	ListActivities(ctx context.Context, activeOnly bool) ([]*models.Activity, error)
	DeleteActivity(ctx context.Context, id string) error

	CreateDownloadFile(ctx context.Context, f *models.DownloadFile) error
	GetDownloadFile(ctx context.Context, id string) (*models.DownloadFile, error)
	ListDownloadFiles(ctx context.Context, activeOnly bool) ([]*models.DownloadFile, error)
	DeleteDownloadFile(ctx context.Context, id string) error
	IncrementDownloadCount(ctx context.Context, id string) error
}
