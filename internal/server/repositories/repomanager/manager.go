package repomanager

import (
	"context"
	"database/sql"

	"github.com/saireecmpo/portal/internal/dbx"
	"github.com/saireecmpo/portal/internal/server/repositories/accounts"
	"github.com/saireecmpo/portal/internal/server/repositories/backupcodes"
	"github.com/saireecmpo/portal/internal/server/repositories/content"
	"github.com/saireecmpo/portal/internal/server/repositories/conversionlogs"
	"github.com/saireecmpo/portal/internal/server/repositories/documents"
	"github.com/saireecmpo/portal/internal/server/repositories/loginattempts"
	"github.com/saireecmpo/portal/internal/server/repositories/resettokens"
	"github.com/saireecmpo/portal/internal/server/repositories/sessions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	LoginAttempts(db dbx.DBTX) loginattempts.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
	BackupCodes(db dbx.DBTX) backupcodes.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Documents(db dbx.DBTX) documents.Repository
	ConversionLogs(db dbx.DBTX) conversionlogs.Repository
	Content(db dbx.DBTX) content.Repository
}
