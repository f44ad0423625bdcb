// Package httpapi exposes the portal over HTTP: JSON endpoints for
// authentication, account management, the document pipeline and the public
// site content.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/saireecmpo/portal/internal/logging"
	"github.com/saireecmpo/portal/internal/server/config"
	"github.com/saireecmpo/portal/internal/server/models"
	"github.com/saireecmpo/portal/internal/server/services"
	"github.com/saireecmpo/portal/internal/server/storage"
)

// AccountManager is the slice of AccountService the handlers use.
type AccountManager interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*models.Account, error)
	Login(ctx context.Context, email, password string, remember bool, client services.ClientInfo) (*services.LoginResult, error)
	VerifyMFA(ctx context.Context, challengeToken, code string, useBackup bool, client services.ClientInfo) (*services.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, sessionID string) (*models.Account, error)
	UpdateProfile(ctx context.Context, account *models.Account) error
	BeginMFASetup(ctx context.Context, accountID string) (secret string, uri string, err error)
	ConfirmMFASetup(ctx context.Context, accountID, secret, code string) ([]string, error)
	DisableMFA(ctx context.Context, accountID, password string) error
	RegenerateBackupCodes(ctx context.Context, accountID string) ([]string, error)
	RemainingBackupCodes(ctx context.Context, accountID string) (int, error)
	ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	LoginHistory(ctx context.Context, email string, limit int) ([]*models.LoginAttempt, error)
}

// DocumentManager is the slice of DocumentService the handlers use.
type DocumentManager interface {
	Submit(ctx context.Context, accountID, title, fileName string, body io.Reader) (*models.Document, error)
	Reprocess(ctx context.Context, id, ownerID string) (*models.Document, error)
	Get(ctx context.Context, id, ownerID string, countView bool) (*models.Document, error)
	List(ctx context.Context, ownerID string) ([]*models.Document, error)
	Delete(ctx context.Context, id, ownerID string) error
	Logs(ctx context.Context, id, ownerID string) ([]*models.ConversionLog, error)
	PDFDownloadURL(ctx context.Context, id, ownerID string) (string, error)
	HTML(ctx context.Context, id, ownerID string) (string, error)
}

// ContentManager is the slice of ContentService the handlers use.
type ContentManager interface {
	CreatePost(ctx context.Context, accountID, title, shortDescription, body string, published bool) (*models.BlogPost, error)
	GetPost(ctx context.Context, slug string, countView bool) (*models.BlogPost, error)
	ListPosts(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error)
	UpdatePost(ctx context.Context, post *models.BlogPost) error
	DeletePost(ctx context.Context, id string) error
	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	ListAnnouncements(ctx context.Context, activeOnly bool) ([]*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error
	CreateActivity(ctx context.Context, a *models.Activity) error
	ListActivities(ctx context.Context, activeOnly bool) ([]*models.Activity, error)
	DeleteActivity(ctx context.Context, id string) error
	CreateDownloadFile(ctx context.Context, f *models.DownloadFile) error
	ListDownloadFiles(ctx context.Context, activeOnly bool) ([]*models.DownloadFile, error)
	DeleteDownloadFile(ctx context.Context, id string) error
	RecordDownload(ctx context.Context, id string) (*models.DownloadFile, error)
}

type HTTPServer struct {
	address   string
	accounts  AccountManager
	documents DocumentManager
	content   ContentManager
	store     storage.Store
	logger    logging.Logger

	sessionValidity time.Duration
	secureCookies   bool
	writeTimeout    time.Duration
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, as AccountManager, ds DocumentManager, cs ContentManager, store storage.Store) *HTTPServer {
	return &HTTPServer{
		address:         cfg.EndpointAddr,
		accounts:        as,
		documents:       ds,
		content:         cs,
		store:           store,
		logger:          l.With("module", "http_server"),
		sessionValidity: cfg.SessionValidityDuration,
		secureCookies:   cfg.SecureCookies,
		// Uploads and reprocessing block on the converter, so responses
		// must be writable for longer than its deadline.
		writeTimeout: cfg.ConvertTimeout + 30*time.Second,
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "error shutting down HTTP server", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
