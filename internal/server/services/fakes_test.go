package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/saireecmpo/portal/internal/common"
	"github.com/saireecmpo/portal/internal/dbx"
	"github.com/saireecmpo/portal/internal/logging"
	"github.com/saireecmpo/portal/internal/server/models"
	accountsrepo "github.com/saireecmpo/portal/internal/server/repositories/accounts"
	backupcodesrepo "github.com/saireecmpo/portal/internal/server/repositories/backupcodes"
	contentrepo "github.com/saireecmpo/portal/internal/server/repositories/content"
	conversionlogsrepo "github.com/saireecmpo/portal/internal/server/repositories/conversionlogs"
	documentsrepo "github.com/saireecmpo/portal/internal/server/repositories/documents"
	loginattemptsrepo "github.com/saireecmpo/portal/internal/server/repositories/loginattempts"
	resettokensrepo "github.com/saireecmpo/portal/internal/server/repositories/resettokens"
	sessionsrepo "github.com/saireecmpo/portal/internal/server/repositories/sessions"
)

// --- test doubles shared by the service tests ---

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

type fakeMailer struct {
	mu   sync.Mutex
	sent []string // "to|subject|body"
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"|"+subject+"|"+body)
	return nil
}

type fakeAccountsRepo struct {
	byID    map[string]*models.Account
	byEmail map[string]*models.Account
	nextID  int
}

func newFakeAccountsRepo() *fakeAccountsRepo {
	return &fakeAccountsRepo{byID: map[string]*models.Account{}, byEmail: map[string]*models.Account{}}
}

func (f *fakeAccountsRepo) add(a *models.Account) *models.Account {
	f.byID[a.ID] = a
	f.byEmail[a.Email] = a
	return a
}

func (f *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if _, ok := f.byEmail[a.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	a.ID = fmt.Sprintf("acc-%d", f.nextID)
	return f.add(a), nil
}

func (f *fakeAccountsRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccountsRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccountsRepo) UpdateProfile(ctx context.Context, a *models.Account) error {
	f.byID[a.ID] = a
	return nil
}

func (f *fakeAccountsRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	a, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.PasswordHash = hash
	return nil
}

func (f *fakeAccountsRepo) SetMFA(ctx context.Context, id string, enabled bool, secret string) error {
	a, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.MFAEnabled = enabled
	a.MFASecret = secret
	return nil
}

type fakeLoginAttemptsRepo struct {
	attempts []*models.LoginAttempt
}

func (f *fakeLoginAttemptsRepo) Create(ctx context.Context, a *models.LoginAttempt) error {
	f.attempts = append(f.attempts, a)
	return nil
}

func (f *fakeLoginAttemptsRepo) ListByEmail(ctx context.Context, email string, limit int) ([]*models.LoginAttempt, error) {
	var out []*models.LoginAttempt
	for i := len(f.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if f.attempts[i].Email == email {
			out = append(out, f.attempts[i])
		}
	}
	return out, nil
}

type fakeResetTokensRepo struct {
	tokens map[string]*models.PasswordResetToken
	nextID int
}

func newFakeResetTokensRepo() *fakeResetTokensRepo {
	return &fakeResetTokensRepo{tokens: map[string]*models.PasswordResetToken{}}
}

func (f *fakeResetTokensRepo) Create(ctx context.Context, accountID, token string) error {
	f.nextID++
	f.tokens[token] = &models.PasswordResetToken{
		ID:        fmt.Sprintf("rt-%d", f.nextID),
		AccountID: accountID,
		Token:     token,
		CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeResetTokensRepo) Find(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	if t, ok := f.tokens[token]; ok {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeResetTokensRepo) MarkUsed(ctx context.Context, id string) error {
	for _, t := range f.tokens {
		if t.ID == id {
			t.Used = true
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeBackupCodesRepo struct {
	codes map[string]map[string]bool // accountID -> set of codes
}

func newFakeBackupCodesRepo() *fakeBackupCodesRepo {
	return &fakeBackupCodesRepo{codes: map[string]map[string]bool{}}
}

func (f *fakeBackupCodesRepo) Replace(ctx context.Context, accountID string, codes []string) error {
	set := map[string]bool{}
	for _, c := range codes {
		set[c] = true
	}
	f.codes[accountID] = set
	return nil
}

func (f *fakeBackupCodesRepo) Consume(ctx context.Context, accountID, code string) (bool, error) {
	set := f.codes[accountID]
	if !set[code] {
		return false, nil
	}
	delete(set, code)
	return true, nil
}

func (f *fakeBackupCodesRepo) Count(ctx context.Context, accountID string) (int, error) {
	return len(f.codes[accountID]), nil
}

func (f *fakeBackupCodesRepo) DeleteAll(ctx context.Context, accountID string) error {
	delete(f.codes, accountID)
	return nil
}

type fakeSessionsRepo struct {
	sessions map[string]*models.Session
}

func newFakeSessionsRepo() *fakeSessionsRepo {
	return &fakeSessionsRepo{sessions: map[string]*models.Session{}}
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *models.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionsRepo) Find(ctx context.Context, id string) (*models.Session, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessionsRepo) Delete(ctx context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionsRepo) DeleteExpired(ctx context.Context) error {
	now := time.Now()
	for id, s := range f.sessions {
		if s.Expired(now) {
			delete(f.sessions, id)
		}
	}
	return nil
}

type fakeDocumentsRepo struct {
	docs   map[string]*models.Document
	nextID int
}

func newFakeDocumentsRepo() *fakeDocumentsRepo {
	return &fakeDocumentsRepo{docs: map[string]*models.Document{}}
}

func (f *fakeDocumentsRepo) Create(ctx context.Context, d *models.Document) error {
	f.nextID++
	d.ID = fmt.Sprintf("doc-%d", f.nextID)
	f.docs[d.ID] = d
	return nil
}

func (f *fakeDocumentsRepo) GetByID(ctx context.Context, id, ownerID string) (*models.Document, error) {
	d, ok := f.docs[id]
	if !ok || d.AccountID != ownerID {
		return nil, common.ErrorNotFound
	}
	c := *d
	return &c, nil
}

func (f *fakeDocumentsRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Document, error) {
	var out []*models.Document
	for _, d := range f.docs {
		if d.AccountID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocumentsRepo) Update(ctx context.Context, d *models.Document) error {
	stored, ok := f.docs[d.ID]
	if !ok {
		return common.ErrorNotFound
	}
	*stored = *d
	return nil
}

func (f *fakeDocumentsRepo) UpdateStatus(ctx context.Context, id, status string) error {
	d, ok := f.docs[id]
	if !ok {
		return common.ErrorNotFound
	}
	d.Status = status
	return nil
}

func (f *fakeDocumentsRepo) IncrementViewCount(ctx context.Context, id string) error {
	d, ok := f.docs[id]
	if !ok {
		return common.ErrorNotFound
	}
	d.ViewCount++
	return nil
}

func (f *fakeDocumentsRepo) Delete(ctx context.Context, id, ownerID string) error {
	d, ok := f.docs[id]
	if !ok || d.AccountID != ownerID {
		return common.ErrorNotFound
	}
	delete(f.docs, id)
	return nil
}

type fakeConversionLogsRepo struct {
	logs []*models.ConversionLog
}

func (f *fakeConversionLogsRepo) Append(ctx context.Context, l *models.ConversionLog) error {
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeConversionLogsRepo) ListByDocument(ctx context.Context, documentID string) ([]*models.ConversionLog, error) {
	var out []*models.ConversionLog
	for _, l := range f.logs {
		if l.DocumentID == documentID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeConversionLogsRepo) actions(documentID string) []string {
	var out []string
	for _, l := range f.logs {
		if l.DocumentID == documentID {
			out = append(out, l.Action)
		}
	}
	return out
}

type fakeContentRepo struct {
	posts         map[string]*models.BlogPost // by slug
	announcements []*models.Announcement
	activities    []*models.Activity
	downloads     map[string]*models.DownloadFile
	nextID        int
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{posts: map[string]*models.BlogPost{}, downloads: map[string]*models.DownloadFile{}}
}

func (f *fakeContentRepo) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeContentRepo) CreatePost(ctx context.Context, p *models.BlogPost) error {
	if _, ok := f.posts[p.Slug]; ok {
		return common.ErrorAlreadyExists
	}
	p.ID = f.id("post")
	f.posts[p.Slug] = p
	return nil
}

func (f *fakeContentRepo) GetPostBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	if p, ok := f.posts[slug]; ok {
		c := *p
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeContentRepo) ListPosts(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error) {
	var out []*models.BlogPost
	for _, p := range f.posts {
		if !publishedOnly || p.Published {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeContentRepo) UpdatePost(ctx context.Context, p *models.BlogPost) error { return nil }
func (f *fakeContentRepo) DeletePost(ctx context.Context, id string) error          { return nil }

func (f *fakeContentRepo) IncrementPostViewCount(ctx context.Context, id string) error {
	for _, p := range f.posts {
		if p.ID == id {
			p.ViewCount++
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeContentRepo) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	a.ID = f.id("ann")
	f.announcements = append(f.announcements, a)
	return nil
}

func (f *fakeContentRepo) ListAnnouncements(ctx context.Context, activeOnly bool) ([]*models.Announcement, error) {
	var out []*models.Announcement
	for _, a := range f.announcements {
		if !activeOnly || a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeContentRepo) DeleteAnnouncement(ctx context.Context, id string) error { return nil }

func (f *fakeContentRepo) CreateActivity(ctx context.Context, a *models.Activity) error {
	a.ID = f.id("act")
	f.activities = append(f.activities, a)
	return nil
}

func (f *fakeContentRepo) ListActivities(ctx context.Context, activeOnly bool) ([]*models.Activity, error) {
	var out []*models.Activity
	for _, a := range f.activities {
		if !activeOnly || a.Active {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeContentRepo) DeleteActivity(ctx context.Context, id string) error { return nil }

func (f *fakeContentRepo) CreateDownloadFile(ctx context.Context, d *models.DownloadFile) error {
	d.ID = f.id("dl")
	f.downloads[d.ID] = d
	return nil
}

func (f *fakeContentRepo) GetDownloadFile(ctx context.Context, id string) (*models.DownloadFile, error) {
	if d, ok := f.downloads[id]; ok {
		c := *d
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeContentRepo) ListDownloadFiles(ctx context.Context, activeOnly bool) ([]*models.DownloadFile, error) {
	var out []*models.DownloadFile
	for _, d := range f.downloads {
		if !activeOnly || d.Active {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeContentRepo) DeleteDownloadFile(ctx context.Context, id string) error { return nil }

func (f *fakeContentRepo) IncrementDownloadCount(ctx context.Context, id string) error {
	if d, ok := f.downloads[id]; ok {
		d.DownloadCount++
		return nil
	}
	return common.ErrorNotFound
}

type fakeRepoManager struct {
	accounts       *fakeAccountsRepo
	loginAttempts  *fakeLoginAttemptsRepo
	resetTokens    *fakeResetTokensRepo
	backupCodes    *fakeBackupCodesRepo
	sessions       *fakeSessionsRepo
	documents      *fakeDocumentsRepo
	conversionLogs *fakeConversionLogsRepo
	content        *fakeContentRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		accounts:       newFakeAccountsRepo(),
		loginAttempts:  &fakeLoginAttemptsRepo{},
		resetTokens:    newFakeResetTokensRepo(),
		backupCodes:    newFakeBackupCodesRepo(),
		sessions:       newFakeSessionsRepo(),
		documents:      newFakeDocumentsRepo(),
		conversionLogs: &fakeConversionLogsRepo{},
		content:        newFakeContentRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accountsrepo.Repository    { return m.accounts }
func (m *fakeRepoManager) LoginAttempts(dbx.DBTX) loginattemptsrepo.Repository {
	return m.loginAttempts
}
func (m *fakeRepoManager) ResetTokens(dbx.DBTX) resettokensrepo.Repository { return m.resetTokens }
func (m *fakeRepoManager) BackupCodes(dbx.DBTX) backupcodesrepo.Repository { return m.backupCodes }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessionsrepo.Repository       { return m.sessions }
func (m *fakeRepoManager) Documents(dbx.DBTX) documentsrepo.Repository     { return m.documents }
func (m *fakeRepoManager) ConversionLogs(dbx.DBTX) conversionlogsrepo.Repository {
	return m.conversionLogs
}
func (m *fakeRepoManager) Content(dbx.DBTX) contentrepo.Repository { return m.content }
