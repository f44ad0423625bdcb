// Package server initializes and runs the portal application: it opens the
// database, applies migrations, wires the services and serves the HTTP API
// until interrupted.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/saireecmpo/portal/internal/logging"
	"github.com/saireecmpo/portal/internal/server/config"
	"github.com/saireecmpo/portal/internal/server/convert"
	"github.com/saireecmpo/portal/internal/server/httpapi"
	"github.com/saireecmpo/portal/internal/server/mailer"
	"github.com/saireecmpo/portal/internal/server/repositories/repomanager"
	"github.com/saireecmpo/portal/internal/server/services"
	"github.com/saireecmpo/portal/internal/server/storage"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	accountService *services.AccountService
	httpServer     *httpapi.HTTPServer
}

// sessionPurgeInterval is how often fully expired sessions are swept from
// the database. Authenticate removes the ones it happens to see; the sweep
// clears sessions of users who never came back.
const sessionPurgeInterval = time.Hour

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	store := storage.NewS3Store(cfg)
	mail := mailer.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	converter := convert.NewPDFConverter(cfg.ConvertCommand, cfg.ConvertTimeout)

	as := services.NewAccountService(db, rm, mail, logger, cfg)
	ds := services.NewDocumentService(db, rm, store, converter, logger)
	cs := services.NewContentService(db, rm)

	hs := httpapi.NewHTTPServer(cfg, logger, as, ds, cs, store)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		repomanager:    rm,
		accountService: as,
		httpServer:     hs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) runSessionPurge(ctx context.Context) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		if err := app.accountService.PurgeExpiredSessions(ctx); err != nil {
			app.logger.Warn(ctx, "error purging expired sessions", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		app.logger.Error(ctx, "migration error", "error", err)
		return
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runSessionPurge(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err)
	}
}
