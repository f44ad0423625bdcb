// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/saireecmpo/portal/internal/dbx"
	"github.com/saireecmpo/portal/internal/server/migrations"
	"github.com/saireecmpo/portal/internal/server/repositories/accounts"
	"github.com/saireecmpo/portal/internal/server/repositories/backupcodes"
	"github.com/saireecmpo/portal/internal/server/repositories/content"
	"github.com/saireecmpo/portal/internal/server/repositories/conversionlogs"
	"github.com/saireecmpo/portal/internal/server/repositories/documents"
	"github.com/saireecmpo/portal/internal/server/repositories/loginattempts"
	"github.com/saireecmpo/portal/internal/server/repositories/resettokens"
	"github.com/saireecmpo/portal/internal/server/repositories/sessions"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

// LoginAttempts returns a loginattempts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) LoginAttempts(db dbx.DBTX) loginattempts.Repository {
	return loginattempts.NewPostgresRepository(db)
}

// ResetTokens returns a resettokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) ResetTokens(db dbx.DBTX) resettokens.Repository {
	return resettokens.NewPostgresRepository(db)
}

// BackupCodes returns a backupcodes.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) BackupCodes(db dbx.DBTX) backupcodes.Repository {
	return backupcodes.NewPostgresRepository(db)
}

// Sessions returns a sessions.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

// Documents returns a documents.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewPostgresRepository(db)
}

// ConversionLogs returns a conversionlogs.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) ConversionLogs(db dbx.DBTX) conversionlogs.Repository {
	return conversionlogs.NewPostgresRepository(db)
}

// Content returns a content.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Content(db dbx.DBTX) content.Repository {
	return content.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
