package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/saireecmpo/portal/internal/common"
	"github.com/saireecmpo/portal/internal/server/models"
	"github.com/saireecmpo/portal/internal/server/repositories/repomanager"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify folds a title into a URL slug: lowercase, runs of non-alphanumeric
// characters collapsed to single hyphens.
func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// ContentService manages the public site records.
type ContentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewContentService(db *sql.DB, m repomanager.RepositoryManager) *ContentService {
	return &ContentService{db: db, repomanager: m}
}

// CreatePost creates a blog post, deriving the slug from the title and
// suffixing it with a counter when it collides with an existing post.
func (s *ContentService) CreatePost(ctx context.Context, accountID, title, shortDescription, body string, published bool) (*models.BlogPost, error) {
	repo := s.repomanager.Content(s.db)

	base := Slugify(title)
	if base == "" {
		base = "post"
	}
	slug := base
	for i := 2; ; i++ {
		_, err := repo.GetPostBySlug(ctx, slug)
		if errors.Is(err, common.ErrorNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}

	post := &models.BlogPost{
		Title:            title,
		Slug:             slug,
		ShortDescription: shortDescription,
		Body:             body,
		Published:        published,
		AccountID:        accountID,
	}
	if err := repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns a post by slug, bumping its view counter when it is
// published and countView is set.
func (s *ContentService) GetPost(ctx context.Context, slug string, countView bool) (*models.BlogPost, error) {
	repo := s.repomanager.Content(s.db)
	post, err := repo.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if countView && post.Published {
		if err := repo.IncrementPostViewCount(ctx, post.ID); err == nil {
			post.ViewCount++
		}
	}
	return post, nil
}

func (s *ContentService) ListPosts(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error) {
	return s.repomanager.Content(s.db).ListPosts(ctx, publishedOnly)
}

func (s *ContentService) UpdatePost(ctx context.Context, post *models.BlogPost) error {
	return s.repomanager.Content(s.db).UpdatePost(ctx, post)
}

func (s *ContentService) DeletePost(ctx context.Context, id string) error {
	return s.repomanager.Content(s.db).DeletePost(ctx, id)
}

func (s *ContentService) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	return s.repomanager.Content(s.db).CreateAnnouncement(ctx, a)
}

func (s *ContentService) ListAnnouncements(ctx context.Context, activeOnly bool) ([]*models.Announcement, error) {
	return s.repomanager.Content(s.db).ListAnnouncements(ctx, activeOnly)
}

func (s *ContentService) DeleteAnnouncement(ctx context.Context, id string) error {
	return s.repomanager.Content(s.db).DeleteAnnouncement(ctx, id)
}

func (s *ContentService) CreateActivity(ctx context.Context, a *models.Activity) error {
	return s.repomanager.Content(s.db).CreateActivity(ctx, a)
}

func (s *ContentService) ListActivities(ctx context.Context, activeOnly bool) ([]*models.Activity, error) {
	return s.repomanager.Content(s.db).ListActivities(ctx, activeOnly)
}

func (s *ContentService) DeleteActivity(ctx context.Context, id string) error {
	return s.repomanager.Content(s.db).DeleteActivity(ctx, id)
}

func (s *ContentService) CreateDownloadFile(ctx context.Context, f *models.DownloadFile) error {
	return s.repomanager.Content(s.db).CreateDownloadFile(ctx, f)
}

func (s *ContentService) ListDownloadFiles(ctx context.Context, activeOnly bool) ([]*models.DownloadFile, error) {
	return s.repomanager.Content(s.db).ListDownloadFiles(ctx, activeOnly)
}

func (s *ContentService) DeleteDownloadFile(ctx context.Context, id string) error {
	return s.repomanager.Content(s.db).DeleteDownloadFile(ctx, id)
}

// RecordDownload returns the file and bumps its download counter.
func (s *ContentService) RecordDownload(ctx context.Context, id string) (*models.DownloadFile, error) {
	repo := s.repomanager.Content(s.db)
	f, err := repo.GetDownloadFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.Active {
		return nil, common.ErrorNotFound
	}
	if err := repo.IncrementDownloadCount(ctx, f.ID); err == nil {
		f.DownloadCount++
	}
	return f, nil
}
