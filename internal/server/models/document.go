package models

import (
	"path"
	"strings"
	"time"
)

// Document statuses. Transitions: pending -> processing -> completed|failed.
// Completed means the pipeline ran to completion; either artifact may still
// be missing if its conversion path failed.
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

// Document is an uploaded office file and its generated artifacts.
type Document struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	AccountID  string `json:"account_id"`
	SourceKey  string `json:"-"`
	SourceName string `json:"source_name"`

	PDFKey      string `json:"-"`
	HTMLKey     string `json:"-"`
	HTMLContent string `json:"-"`

	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	PageCount    int    `json:"page_count"`
	ViewCount    int    `json:"view_count"`

	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ProcessedAt time.Time `json:"processed_at,omitzero"`
}

// SourceExtension returns the lowercase extension of the source file name,
// without the leading dot.
func (d *Document) SourceExtension() string {
	ext := strings.ToLower(path.Ext(d.SourceName))
	return strings.TrimPrefix(ext, ".")
}

func (d *Document) IsDocx() bool { return d.SourceExtension() == "docx" }
func (d *Document) IsPptx() bool { return d.SourceExtension() == "pptx" }

func (d *Document) HasPDF() bool  { return d.PDFKey != "" }
func (d *Document) HasHTML() bool { return d.HTMLKey != "" || d.HTMLContent != "" }
