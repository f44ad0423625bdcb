// Package content provides a PostgreSQL-backed repository for the public
// site records: blog posts, announcements, activities and download files.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saireecmpo/portal/internal/common"
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

func (r *PostgresRepository) CreatePost(ctx context.Context, post *models.BlogPost) error {
	query := `
		INSERT INTO blog_posts (title, slug, short_description, body, published, account_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		post.Title, post.Slug, post.ShortDescription, post.Body, post.Published, post.AccountID).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	query := `
		SELECT id, title, slug, short_description, body, published, view_count,
			account_id, created_at, updated_at
		FROM blog_posts
		WHERE slug = $1
	`
	p := &models.BlogPost{}
	err := r.db.QueryRowContext(ctx, query, slug).
		Scan(&p.ID, &p.Title, &p.Slug, &p.ShortDescription, &p.Body, &p.Published,
			&p.ViewCount, &p.AccountID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListPosts(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error) {
	query := `
		SELECT id, title, slug, short_description, body, published, view_count,
			account_id, created_at, updated_at
		FROM blog_posts
		WHERE published OR NOT $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var posts []*models.BlogPost
	for rows.Next() {
		p := &models.BlogPost{}
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.ShortDescription, &p.Body,
			&p.Published, &p.ViewCount, &p.AccountID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return posts, nil
}

func (r *PostgresRepository) UpdatePost(ctx context.Context, post *models.BlogPost) error {
	query := `
		UPDATE blog_posts
		SET title = $2, slug = $3, short_description = $4, body = $5,
			published = $6, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Slug, post.ShortDescription, post.Body, post.Published); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeletePost(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IncrementPostViewCount(ctx context.Context, id string) error {
	query := `
		UPDATE blog_posts
		SET view_count = view_count + 1
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	query := `
		INSERT INTO announcements (title, body, pinned_order, active, account_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.Title, a.Body, a.PinnedOrder, a.Active, a.AccountID).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListAnnouncements returns announcements in display order: pinned first,
// then newest.
func (r *PostgresRepository) ListAnnouncements(ctx context.Context, activeOnly bool) ([]*models.Announcement, error) {
	query := `
		SELECT id, title, body, pinned_order, active, account_id, created_at
		FROM announcements
		WHERE active OR NOT $1
		ORDER BY pinned_order DESC, created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []*models.Announcement
	for rows.Next() {
		a := &models.Announcement{}
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.PinnedOrder, &a.Active,
			&a.AccountID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateActivity(ctx context.Context, a *models.Activity) error {
	query := `
		INSERT INTO activities (title, body, event_date, active, account_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.Title, a.Body, a.EventDate, a.Active, a.AccountID).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListActivities returns activities newest event first.
func (r *PostgresRepository) ListActivities(ctx context.Context, activeOnly bool) ([]*models.Activity, error) {
	query := `
		SELECT id, title, body, event_date, active, account_id, created_at
		FROM activities
		WHERE active OR NOT $1
		ORDER BY event_date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []*models.Activity
	for rows.Next() {
		a := &models.Activity{}
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.EventDate, &a.Active,
			&a.AccountID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) DeleteActivity(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateDownloadFile(ctx context.Context, f *models.DownloadFile) error {
	query := `
		INSERT INTO download_files (title, short_description, file_key, file_name, active, account_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		f.Title, f.ShortDescription, f.FileKey, f.FileName, f.Active, f.AccountID).
		Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetDownloadFile(ctx context.Context, id string) (*models.DownloadFile, error) {
	query := `
		SELECT id, title, short_description, file_key, file_name, download_count,
			active, account_id, created_at
		FROM download_files
		WHERE id = $1
	`
	f := &models.DownloadFile{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&f.ID, &f.Title, &f.ShortDescription, &f.FileKey, &f.FileName,
			&f.DownloadCount, &f.Active, &f.AccountID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) ListDownloadFiles(ctx context.Context, activeOnly bool) ([]*models.DownloadFile, error) {
	query := `
		SELECT id, title, short_description, file_key, file_name, download_count,
			active, account_id, created_at
		FROM download_files
		WHERE active OR NOT $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []*models.DownloadFile
	for rows.Next() {
		f := &models.DownloadFile{}
		if err := rows.Scan(&f.ID, &f.Title, &f.ShortDescription, &f.FileKey, &f.FileName,
			&f.DownloadCount, &f.Active, &f.AccountID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) DeleteDownloadFile(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM download_files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) IncrementDownloadCount(ctx context.Context, id string) error {
	query := `
		UPDATE download_files
		SET download_count = download_count + 1
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
