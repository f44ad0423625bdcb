package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/saireecmpo/portal/internal/common"
	"github.com/saireecmpo/portal/internal/logging"
	"github.com/saireecmpo/portal/internal/server/convert"
	"github.com/saireecmpo/portal/internal/server/models"
	"github.com/saireecmpo/portal/internal/server/repositories/repomanager"
	"github.com/saireecmpo/portal/internal/server/storage"
)

// ErrUnsupportedFormat rejects uploads that are not .docx or .pptx.
var ErrUnsupportedFormat = errors.New("unsupported document format")

const (
	contentTypePDF  = "application/pdf"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypePptx = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// DocumentService runs the upload and conversion pipeline and owns the
// lifecycle of documents and their artifacts.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.Store
	converter   *convert.PDFConverter
	logger      logging.Logger
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, store storage.Store, converter *convert.PDFConverter, logger logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: m,
		store:       store,
		converter:   converter,
		logger:      logger,
	}
}

// Submit stores the uploaded source, creates a pending document and runs
// the conversion pipeline. The returned document reflects the final
// pipeline state.
func (s *DocumentService) Submit(ctx context.Context, accountID, title, fileName string, body io.Reader) (*models.Document, error) {
	doc := &models.Document{
		AccountID:  accountID,
		Title:      title,
		SourceName: filepath.Base(fileName),
		Status:     models.DocumentStatusPending,
	}
	var contentType string
	switch {
	case doc.IsDocx():
		contentType = contentTypeDocx
	case doc.IsPptx():
		contentType = contentTypePptx
	default:
		return nil, ErrUnsupportedFormat
	}

	doc.SourceKey = storage.MakeStorageKey("sources", doc.SourceName)
	if err := s.store.Save(ctx, doc.SourceKey, body, contentType); err != nil {
		return nil, fmt.Errorf("error storing source: %v", err)
	}

	if err := s.repomanager.Documents(s.db).Create(ctx, doc); err != nil {
		return nil, err
	}

	s.Process(ctx, doc)
	return doc, nil
}

// Process runs both conversion paths over the stored source. A failure on
// one path does not stop the other; the document completes as long as the
// pipeline itself ran, with per-path outcomes in the conversion log.
func (s *DocumentService) Process(ctx context.Context, doc *models.Document) {
	docs := s.repomanager.Documents(s.db)

	doc.Status = models.DocumentStatusProcessing
	if err := docs.UpdateStatus(ctx, doc.ID, doc.Status); err != nil {
		s.logger.Error(ctx, "error updating document status", "document_id", doc.ID, "error", err)
	}
	s.appendLog(ctx, doc.ID, models.ConversionActionStart, "Starting document conversion")

	fail := func(msg string) {
		doc.Status = models.DocumentStatusFailed
		doc.ErrorMessage = msg
		if err := docs.Update(ctx, doc); err != nil {
			s.logger.Error(ctx, "error saving failed document", "document_id", doc.ID, "error", err)
		}
		s.appendLog(ctx, doc.ID, models.ConversionActionError, "Processing failed: "+msg)
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Sprintf("%v", r))
		}
	}()

	tempDir, err := os.MkdirTemp("", "portal-convert-*")
	if err != nil {
		fail(err.Error())
		return
	}
	defer os.RemoveAll(tempDir)

	sourcePath, err := s.fetchSource(ctx, doc, tempDir)
	if err != nil {
		fail(err.Error())
		return
	}

	s.convertPDF(ctx, doc, sourcePath, tempDir)
	s.convertHTML(ctx, doc, sourcePath)

	doc.Status = models.DocumentStatusCompleted
	doc.ProcessedAt = time.Now()
	doc.ErrorMessage = ""
	if err := docs.Update(ctx, doc); err != nil {
		s.logger.Error(ctx, "error saving document", "document_id", doc.ID, "error", err)
	}
	s.appendLog(ctx, doc.ID, models.ConversionActionComplete, "Document processing completed")
}

func (s *DocumentService) fetchSource(ctx context.Context, doc *models.Document, tempDir string) (string, error) {
	rc, err := s.store.Open(ctx, doc.SourceKey)
	if err != nil {
		return "", fmt.Errorf("error fetching source: %v", err)
	}
	defer rc.Close()

	sourcePath := filepath.Join(tempDir, doc.SourceName)
	f, err := os.Create(sourcePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, rc); err != nil {
		return "", fmt.Errorf("error writing source: %v", err)
	}
	return sourcePath, nil
}

func (s *DocumentService) convertPDF(ctx context.Context, doc *models.Document, sourcePath, tempDir string) {
	pdfPath, err := s.converter.Convert(ctx, sourcePath, tempDir)
	if err != nil {
		s.appendLog(ctx, doc.ID, models.ConversionActionPDFError, "PDF conversion failed: "+err.Error())
		return
	}

	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		s.appendLog(ctx, doc.ID, models.ConversionActionPDFError, "PDF conversion failed: "+err.Error())
		return
	}

	key := storage.MakeStorageKey("pdfs", strings.TrimSuffix(doc.SourceName, filepath.Ext(doc.SourceName))+".pdf")
	if err := s.store.Save(ctx, key, bytes.NewReader(pdf), contentTypePDF); err != nil {
		s.appendLog(ctx, doc.ID, models.ConversionActionPDFError, "PDF conversion failed: "+err.Error())
		return
	}

	doc.PDFKey = key
	doc.PageCount = convert.CountPDFPages(pdf)
	s.appendLog(ctx, doc.ID, models.ConversionActionPDFSuccess, "PDF conversion successful")
}

func (s *DocumentService) convertHTML(ctx context.Context, doc *models.Document, sourcePath string) {
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		s.appendLog(ctx, doc.ID, models.ConversionActionHTMLError, "HTML conversion failed: "+err.Error())
		return
	}

	var html string
	if doc.IsDocx() {
		parsed, err := convert.ParseDocx(bytes.NewReader(source), int64(len(source)))
		if err != nil {
			s.appendLog(ctx, doc.ID, models.ConversionActionHTMLError, "HTML conversion failed: "+err.Error())
			return
		}
		html = convert.DocxHTML(parsed)
	} else {
		parsed, err := convert.ParsePptx(bytes.NewReader(source), int64(len(source)))
		if err != nil {
			s.appendLog(ctx, doc.ID, models.ConversionActionHTMLError, "HTML conversion failed: "+err.Error())
			return
		}
		html = convert.PptxHTML(parsed)
	}

	key := storage.MakeStorageKey("html", strings.TrimSuffix(doc.SourceName, filepath.Ext(doc.SourceName))+".html")
	if err := s.store.Save(ctx, key, strings.NewReader(html), contentTypeHTML); err != nil {
		s.appendLog(ctx, doc.ID, models.ConversionActionHTMLError, "HTML conversion failed: "+err.Error())
		return
	}

	doc.HTMLKey = key
	doc.HTMLContent = html
	s.appendLog(ctx, doc.ID, models.ConversionActionHTMLSuccess, "HTML conversion successful")
}

// Reprocess reruns the pipeline over the stored source, appending to the
// existing conversion log.
func (s *DocumentService) Reprocess(ctx context.Context, id, ownerID string) (*models.Document, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	s.Process(ctx, doc)
	return doc, nil
}

// Get returns the document, bumping the view counter when requested.
func (s *DocumentService) Get(ctx context.Context, id, ownerID string, countView bool) (*models.Document, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if countView {
		if err := s.repomanager.Documents(s.db).IncrementViewCount(ctx, doc.ID); err != nil {
			s.logger.Warn(ctx, "error incrementing view count", "document_id", doc.ID, "error", err)
		} else {
			doc.ViewCount++
		}
	}
	return doc, nil
}

// List returns the owner's documents, newest first.
func (s *DocumentService) List(ctx context.Context, ownerID string) ([]*models.Document, error) {
	return s.repomanager.Documents(s.db).ListByOwner(ctx, ownerID)
}

// Delete removes the row and all stored blobs. Blob deletion failures are
// logged, not fatal; the row is the source of truth.
func (s *DocumentService) Delete(ctx context.Context, id, ownerID string) error {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.repomanager.Documents(s.db).Delete(ctx, id, ownerID); err != nil {
		return err
	}

	for _, key := range []string{doc.SourceKey, doc.PDFKey, doc.HTMLKey} {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn(ctx, "error deleting blob", "key", key, "error", err)
		}
	}
	return nil
}

// Logs returns the document's pipeline history, oldest first.
func (s *DocumentService) Logs(ctx context.Context, id, ownerID string) ([]*models.ConversionLog, error) {
	if _, err := s.repomanager.Documents(s.db).GetByID(ctx, id, ownerID); err != nil {
		return nil, err
	}
	return s.repomanager.ConversionLogs(s.db).ListByDocument(ctx, id)
}

// PDFDownloadURL returns a presigned link to the PDF rendition.
func (s *DocumentService) PDFDownloadURL(ctx context.Context, id, ownerID string) (string, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	if !doc.HasPDF() {
		return "", common.ErrorNotFound
	}
	return s.store.PresignGet(ctx, doc.PDFKey)
}

// HTML returns the rendered HTML, falling back to the stored artifact when
// the row does not carry the content inline.
func (s *DocumentService) HTML(ctx context.Context, id, ownerID string) (string, error) {
	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, id, ownerID)
	if err != nil {
		return "", err
	}
	if doc.HTMLContent != "" {
		return doc.HTMLContent, nil
	}
	if doc.HTMLKey == "" {
		return "", common.ErrorNotFound
	}

	rc, err := s.store.Open(ctx, doc.HTMLKey)
	if err != nil {
		return "", fmt.Errorf("error fetching html artifact: %v", err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("error reading html artifact: %v", err)
	}
	return string(b), nil
}

func (s *DocumentService) appendLog(ctx context.Context, documentID, action, message string) {
	entry := &models.ConversionLog{DocumentID: documentID, Action: action, Message: message}
	if err := s.repomanager.ConversionLogs(s.db).Append(ctx, entry); err != nil {
		s.logger.Warn(ctx, "error appending conversion log", "document_id", documentID, "error", err)
	}
}
