package models

import "time"

// BlogPost is a published article on the public site.
type BlogPost struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	ShortDescription string    `json:"short_description"`
	Body             string    `json:"body"`
	Published        bool      `json:"published"`
	ViewCount        int       `json:"view_count"`
	AccountID        string    `json:"account_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Announcement is a short notice shown on the landing page.
type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	PinnedOrder int       `json:"pinned_order"`
	Active      bool      `json:"active"`
	AccountID   string    `json:"account_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Activity is an event record (past or upcoming) published by the office.
type Activity struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	EventDate time.Time `json:"event_date"`
	Active    bool      `json:"active"`
	AccountID string    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DownloadFile is a blob-backed file offered for public download.
type DownloadFile struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"short_description"`
	FileKey          string    `json:"-"`
	FileName         string    `json:"file_name"`
	DownloadCount    int       `json:"download_count"`
	Active           bool      `json:"active"`
	AccountID        string    `json:"account_id"`
	CreatedAt        time.Time `json:"created_at"`
}
