// Package services contains server-side business logic. This file implements
// AccountService: registration, password and MFA login, sessions, backup
// codes and password reset.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/saireecmpo/portal/internal/common"
	"github.com/saireecmpo/portal/internal/dbx"
	"github.com/saireecmpo/portal/internal/logging"
	"github.com/saireecmpo/portal/internal/server/auth"
	"github.com/saireecmpo/portal/internal/server/config"
	"github.com/saireecmpo/portal/internal/server/mailer"
	"github.com/saireecmpo/portal/internal/server/models"
	"github.com/saireecmpo/portal/internal/server/repositories/repomanager"
)

// Login outcomes. A password check alone never authenticates an account
// with MFA enabled; it only earns a challenge token.
const (
	LoginStateAuthenticated = "authenticated"
	LoginStateMFARequired   = "mfa_required"
)

// LoginResult reports which state the login reached. SessionID is set only
// for authenticated logins, ChallengeToken only for pending MFA.
type LoginResult struct {
	State          string
	SessionID      string
	ChallengeToken string
	Remember       bool
	Account        *models.Account
}

// ClientInfo carries the request metadata recorded with each login attempt.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AccountService provides authentication and account management.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      mailer.Mailer
	logger      logging.Logger

	secretKey                  []byte
	sessionValidityDuration    time.Duration
	challengeValidityDuration  time.Duration
	resetTokenValidityDuration time.Duration
	siteName                   string
	baseURL                    string
}

// NewAccountService constructs an AccountService using repositories and
// server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, mail mailer.Mailer, logger logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                         db,
		repomanager:                m,
		mailer:                     mail,
		logger:                     logger,
		secretKey:                  []byte(cfg.SecretKey),
		sessionValidityDuration:    cfg.SessionValidityDuration,
		challengeValidityDuration:  cfg.MFAChallengeValidityDuration,
		resetTokenValidityDuration: cfg.ResetTokenValidityDuration,
		siteName:                   cfg.SiteName,
		baseURL:                    cfg.BaseURL,
	}
}

// Register creates a new account with a bcrypt password hash.
func (s *AccountService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %v", err)
	}

	account := &models.Account{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
	}
	repo := s.repomanager.Accounts(s.db)
	a, err := repo.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("error creating account: %v", err)
	}
	return a, nil
}

// Login verifies the password and either opens a session or, when the
// account has MFA enabled, returns a short-lived challenge token. Every
// attempt is recorded with the submitted email, including attempts against
// addresses that have no account.
func (s *AccountService) Login(ctx context.Context, email, password string, remember bool, client ClientInfo) (*LoginResult, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.recordAttempt(ctx, email, client, false)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.recordAttempt(ctx, email, client, false)
		return nil, common.ErrorUnauthorized
	}

	if account.MFAEnabled {
		token, err := auth.GenerateChallengeToken(account.ID, remember, s.secretKey, s.challengeValidityDuration)
		if err != nil {
			return nil, common.ErrorInternal
		}
		// The password check is the audited attempt; the second factor
		// does not add records of its own.
		s.recordAttempt(ctx, email, client, true)
		return &LoginResult{State: LoginStateMFARequired, ChallengeToken: token, Account: account}, nil
	}

	session, err := s.createSession(ctx, account.ID, remember)
	if err != nil {
		return nil, err
	}
	s.recordAttempt(ctx, email, client, true)
	return &LoginResult{State: LoginStateAuthenticated, SessionID: session.ID, Remember: remember, Account: account}, nil
}

// VerifyMFA completes a pending login. The code is either a TOTP code or,
// when useBackup is set, a single-use backup code consumed atomically.
// The attempt ledger covers the password stage only; this step adds no
// records of its own.
func (s *AccountService) VerifyMFA(ctx context.Context, challengeToken, code string, useBackup bool, client ClientInfo) (*LoginResult, error) {
	accountID, remember, err := auth.ParseChallengeToken(challengeToken, s.secretKey)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	if useBackup {
		consumed, err := s.repomanager.BackupCodes(s.db).Consume(ctx, account.ID, auth.NormalizeBackupCode(code))
		if err != nil {
			return nil, common.ErrorInternal
		}
		if !consumed {
			return nil, common.ErrInvalidMFACode
		}
	} else if !auth.VerifyTOTP(code, account.MFASecret, time.Now()) {
		return nil, common.ErrInvalidMFACode
	}

	session, err := s.createSession(ctx, account.ID, remember)
	if err != nil {
		return nil, err
	}
	return &LoginResult{State: LoginStateAuthenticated, SessionID: session.ID, Remember: remember, Account: account}, nil
}

// Logout removes the session. Logging out an unknown or already removed
// session succeeds.
func (s *AccountService) Logout(ctx context.Context, sessionID string) error {
	return s.repomanager.Sessions(s.db).Delete(ctx, sessionID)
}

// Authenticate resolves a session ID to its account. Expired sessions are
// removed on sight and reported as ErrSessionExpired.
func (s *AccountService) Authenticate(ctx context.Context, sessionID string) (*models.Account, error) {
	session, err := s.repomanager.Sessions(s.db).Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if session.Expired(time.Now()) {
		if err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID); err != nil {
			s.logger.Warn(ctx, "error deleting expired session", "error", err)
		}
		return nil, common.ErrSessionExpired
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, session.AccountID)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	return account, nil
}

// PurgeExpiredSessions deletes all sessions past their expiry. Authenticate
// already removes expired sessions it encounters; this clears the rest.
func (s *AccountService) PurgeExpiredSessions(ctx context.Context) error {
	return s.repomanager.Sessions(s.db).DeleteExpired(ctx)
}

// UpdateProfile saves the mutable profile fields.
func (s *AccountService) UpdateProfile(ctx context.Context, account *models.Account) error {
	if err := s.repomanager.Accounts(s.db).UpdateProfile(ctx, account); err != nil {
		return fmt.Errorf("error updating profile: %v", err)
	}
	return nil
}

// BeginMFASetup issues a fresh TOTP secret and provisioning URI. Nothing is
// stored until the user proves possession via ConfirmMFASetup.
func (s *AccountService) BeginMFASetup(ctx context.Context, accountID string) (secret string, uri string, err error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return "", "", common.ErrorUnauthorized
	}
	if account.MFAEnabled {
		return "", "", common.ErrorAlreadyExists
	}
	return auth.GenerateTOTPSecret(s.siteName, account.Email)
}

// ConfirmMFASetup verifies a code against the pending secret, enables MFA
// and issues the initial backup code set. The codes are returned exactly
// once and stored only as consumable rows.
func (s *AccountService) ConfirmMFASetup(ctx context.Context, accountID, secret, code string) ([]string, error) {
	if !auth.VerifyTOTP(code, secret, time.Now()) {
		return nil, common.ErrInvalidMFACode
	}

	codes, err := auth.GenerateBackupCodes(auth.BackupCodeCount)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).SetMFA(ctx, accountID, true, secret); err != nil {
			return err
		}
		return s.repomanager.BackupCodes(tx).Replace(ctx, accountID, codes)
	}); err != nil {
		return nil, fmt.Errorf("error enabling mfa: %v", err)
	}
	return codes, nil
}

// DisableMFA turns MFA off after re-verifying the password, and discards
// any remaining backup codes.
func (s *AccountService) DisableMFA(ctx context.Context, accountID, password string) error {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return common.ErrorUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return common.ErrorUnauthorized
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).SetMFA(ctx, accountID, false, ""); err != nil {
			return err
		}
		return s.repomanager.BackupCodes(tx).DeleteAll(ctx, accountID)
	}); err != nil {
		return fmt.Errorf("error disabling mfa: %v", err)
	}
	return nil
}

// RegenerateBackupCodes replaces the whole backup code set and returns the
// new codes. Earlier codes stop working immediately.
func (s *AccountService) RegenerateBackupCodes(ctx context.Context, accountID string) ([]string, error) {
	codes, err := auth.GenerateBackupCodes(auth.BackupCodeCount)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.BackupCodes(s.db).Replace(ctx, accountID, codes); err != nil {
		return nil, fmt.Errorf("error replacing backup codes: %v", err)
	}
	return codes, nil
}

// RemainingBackupCodes reports how many unconsumed codes the account holds.
func (s *AccountService) RemainingBackupCodes(ctx context.Context, accountID string) (int, error) {
	return s.repomanager.BackupCodes(s.db).Count(ctx, accountID)
}

// ChangePassword verifies the current password and stores a new hash.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		return common.ErrorUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)) != nil {
		return common.ErrorUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrorInternal
	}
	if err := s.repomanager.Accounts(s.db).UpdatePassword(ctx, accountID, string(hash)); err != nil {
		return fmt.Errorf("error updating password: %v", err)
	}
	return nil
}

// RequestPasswordReset mints a reset token and mails the link. It reports
// success whether or not the email maps to an account, so the endpoint
// cannot be used to probe for registered addresses.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}

	token, err := common.MakeRandURLSafeString(48)
	if err != nil {
		return common.ErrorInternal
	}
	if err := s.repomanager.ResetTokens(s.db).Create(ctx, account.ID, token); err != nil {
		return fmt.Errorf("error creating reset token: %v", err)
	}

	go func() {
		link := fmt.Sprintf("%s/reset-password/%s", s.baseURL, token)
		body := fmt.Sprintf("Hello %s,\n\nUse the link below to reset your %s password. The link is valid for 24 hours and can be used once.\n\n%s\n",
			account.FullName(), s.siteName, link)
		if err := s.mailer.Send(account.Email, "Password reset", body); err != nil {
			s.logger.Error(context.Background(), "error sending reset email", "error", err)
		}
	}()
	return nil
}

// ConfirmPasswordReset redeems a reset token and sets the new password.
// The token is burned in the same transaction that changes the password.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	t, err := s.repomanager.ResetTokens(s.db).Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return common.ErrorInternal
	}
	if t.Used {
		return common.ErrTokenUsed
	}
	if !t.Valid(time.Now(), s.resetTokenValidityDuration) {
		return common.ErrTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrorInternal
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.ResetTokens(tx).MarkUsed(ctx, t.ID); err != nil {
			return err
		}
		return s.repomanager.Accounts(tx).UpdatePassword(ctx, t.AccountID, string(hash))
	}); err != nil {
		return fmt.Errorf("error resetting password: %v", err)
	}
	return nil
}

// LoginHistory returns the most recent attempts recorded for the email.
func (s *AccountService) LoginHistory(ctx context.Context, email string, limit int) ([]*models.LoginAttempt, error) {
	return s.repomanager.LoginAttempts(s.db).ListByEmail(ctx, email, limit)
}

func (s *AccountService) createSession(ctx context.Context, accountID string, remember bool) (*models.Session, error) {
	id, err := common.MakeRandURLSafeString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	session := &models.Session{
		ID:        id,
		AccountID: accountID,
		Remember:  remember,
		ExpiresAt: time.Now().Add(s.sessionValidityDuration),
	}
	if err := s.repomanager.Sessions(s.db).Create(ctx, session); err != nil {
		return nil, fmt.Errorf("error creating session: %v", err)
	}
	return session, nil
}

func (s *AccountService) recordAttempt(ctx context.Context, email string, client ClientInfo, successful bool) {
	attempt := &models.LoginAttempt{
		Email:      email,
		IPAddress:  client.IPAddress,
		UserAgent:  client.UserAgent,
		Successful: successful,
	}
	if err := s.repomanager.LoginAttempts(s.db).Create(ctx, attempt); err != nil {
		s.logger.Warn(ctx, "error recording login attempt", "error", err)
	}
}
