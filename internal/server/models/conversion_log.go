package models

import "time"

// Conversion log actions appended by the pipeline. The trail is append-only;
// reprocessing adds new entries instead of clearing old ones.
const (
	ConversionActionStart       = "start"
	ConversionActionPDFSuccess  = "pdf_success"
	ConversionActionPDFError    = "pdf_error"
	ConversionActionHTMLSuccess = "html_success"
	ConversionActionHTMLError   = "html_error"
	ConversionActionComplete    = "complete"
	ConversionActionError       = "error"
)

// ConversionLog is an immutable child record of a Document describing one
// pipeline step.
type ConversionLog struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Action     string    `json:"action"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
