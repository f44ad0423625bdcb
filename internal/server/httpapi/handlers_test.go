package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/saireecmpo/portal/internal/common"
	"github.com/saireecmpo/portal/internal/logging"
	"github.com/saireecmpo/portal/internal/server/config"
	"github.com/saireecmpo/portal/internal/server/models"
	"github.com/saireecmpo/portal/internal/server/services"
)

// ---- test logger ----

type nopLogger struct{}

func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// ---- fakes ----

type fakeAccounts struct {
	loginResp *services.LoginResult
	loginErr  error

	verifyResp *services.LoginResult
	verifyErr  error

	authResp *models.Account
	authErr  error

	logoutErr error

	regResp *models.Account
	regErr  error

	historyResp []*models.LoginAttempt

	changePasswordErr error
}

func (f *fakeAccounts) Register(ctx context.Context, email, password, firstName, lastName string) (*models.Account, error) {
	return f.regResp, f.regErr
}
func (f *fakeAccounts) Login(ctx context.Context, email, password string, remember bool, client services.ClientInfo) (*services.LoginResult, error) {
	return f.loginResp, f.loginErr
}
func (f *fakeAccounts) VerifyMFA(ctx context.Context, challengeToken, code string, useBackup bool, client services.ClientInfo) (*services.LoginResult, error) {
	return f.verifyResp, f.verifyErr
}
func (f *fakeAccounts) Logout(ctx context.Context, sessionID string) error {
	return f.logoutErr
}
func (f *fakeAccounts) Authenticate(ctx context.Context, sessionID string) (*models.Account, error) {
	return f.authResp, f.authErr
}
func (f *fakeAccounts) UpdateProfile(ctx context.Context, account *models.Account) error {
	return nil
}
func (f *fakeAccounts) BeginMFASetup(ctx context.Context, accountID string) (string, string, error) {
	return "SECRET", "otpauth://totp/example", nil
}
func (f *fakeAccounts) ConfirmMFASetup(ctx context.Context, accountID, secret, code string) ([]string, error) {
	return []string{"AAAA1111", "BBBB2222"}, nil
}
func (f *fakeAccounts) DisableMFA(ctx context.Context, accountID, password string) error {
	return nil
}
func (f *fakeAccounts) RegenerateBackupCodes(ctx context.Context, accountID string) ([]string, error) {
	return []string{"CCCC3333"}, nil
}
func (f *fakeAccounts) RemainingBackupCodes(ctx context.Context, accountID string) (int, error) {
	return 7, nil
}
func (f *fakeAccounts) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	return f.changePasswordErr
}
func (f *fakeAccounts) RequestPasswordReset(ctx context.Context, email string) error {
	return nil
}
func (f *fakeAccounts) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return nil
}
func (f *fakeAccounts) LoginHistory(ctx context.Context, email string, limit int) ([]*models.LoginAttempt, error) {
	return f.historyResp, nil
}

type fakeDocuments struct {
	submitResp *models.Document
	submitErr  error

	getResp *models.Document
	getErr  error

	listResp []*models.Document

	pdfURL string
	html   string
}

func (f *fakeDocuments) Submit(ctx context.Context, accountID, title, fileName string, body io.Reader) (*models.Document, error) {
	return f.submitResp, f.submitErr
}
func (f *fakeDocuments) Reprocess(ctx context.Context, id, ownerID string) (*models.Document, error) {
	return f.getResp, f.getErr
}
func (f *fakeDocuments) Get(ctx context.Context, id, ownerID string, countView bool) (*models.Document, error) {
	return f.getResp, f.getErr
}
func (f *fakeDocuments) List(ctx context.Context, ownerID string) ([]*models.Document, error) {
	return f.listResp, nil
}
func (f *fakeDocuments) Delete(ctx context.Context, id, ownerID string) error {
	return f.getErr
}
func (f *fakeDocuments) Logs(ctx context.Context, id, ownerID string) ([]*models.ConversionLog, error) {
	return nil, f.getErr
}
func (f *fakeDocuments) PDFDownloadURL(ctx context.Context, id, ownerID string) (string, error) {
	return f.pdfURL, f.getErr
}
func (f *fakeDocuments) HTML(ctx context.Context, id, ownerID string) (string, error) {
	return f.html, f.getErr
}

type fakeContent struct {
	postResp *models.BlogPost
	postErr  error

	downloadResp *models.DownloadFile
	downloadErr  error
}

func (f *fakeContent) CreatePost(ctx context.Context, accountID, title, shortDescription, body string, published bool) (*models.BlogPost, error) {
	return f.postResp, f.postErr
}
func (f *fakeContent) GetPost(ctx context.Context, slug string, countView bool) (*models.BlogPost, error) {
	return f.postResp, f.postErr
}
func (f *fakeContent) ListPosts(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error) {
	if f.postResp == nil {
		return nil, nil
	}
	return []*models.BlogPost{f.postResp}, nil
}
func (f *fakeContent) UpdatePost(ctx context.Context, post *models.BlogPost) error { return f.postErr }
func (f *fakeContent) DeletePost(ctx context.Context, id string) error             { return f.postErr }
func (f *fakeContent) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	return nil
}
func (f *fakeContent) ListAnnouncements(ctx context.Context, activeOnly bool) ([]*models.Announcement, error) {
	return nil, nil
}
func (f *fakeContent) DeleteAnnouncement(ctx context.Context, id string) error { return nil }
func (f *fakeContent) CreateActivity(ctx context.Context, a *models.Activity) error {
	return nil
}
func (f *fakeContent) ListActivities(ctx context.Context, activeOnly bool) ([]*models.Activity, error) {
	return nil, nil
}
func (f *fakeContent) DeleteActivity(ctx context.Context, id string) error { return nil }
func (f *fakeContent) CreateDownloadFile(ctx context.Context, df *models.DownloadFile) error {
	return nil
}
func (f *fakeContent) ListDownloadFiles(ctx context.Context, activeOnly bool) ([]*models.DownloadFile, error) {
	return nil, nil
}
func (f *fakeContent) DeleteDownloadFile(ctx context.Context, id string) error { return nil }
func (f *fakeContent) RecordDownload(ctx context.Context, id string) (*models.DownloadFile, error) {
	return f.downloadResp, f.downloadErr
}

type fakeBlobStore struct{}

func (fakeBlobStore) Save(ctx context.Context, key string, body io.Reader, contentType string) error {
	return nil
}
func (fakeBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}
func (fakeBlobStore) Delete(ctx context.Context, key string) error { return nil }
func (fakeBlobStore) PresignGet(ctx context.Context, key string) (string, error) {
	return "https://blobs.example.com/" + key, nil
}

func newTestServer(as *fakeAccounts, ds *fakeDocuments, cs *fakeContent) *HTTPServer {
	cfg := &config.Config{
		EndpointAddr:            ":0",
		SessionValidityDuration: 24 * time.Hour,
	}
	return NewHTTPServer(cfg, nopLogger{}, as, ds, cs, fakeBlobStore{})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func sessionCookie(value string) *http.Cookie {
	return &http.Cookie{Name: sessionCookieName, Value: value}
}

// ---- tests ----

func TestLogin_SetsSessionCookie(t *testing.T) {
	account := &models.Account{ID: "acc-1", Email: "user@example.com"}
	as := &fakeAccounts{loginResp: &services.LoginResult{
		State:     services.LoginStateAuthenticated,
		SessionID: "sess-1",
		Remember:  true,
		Account:   account,
	}}
	h := newTestServer(as, &fakeDocuments{}, &fakeContent{}).Handler()

	w := doJSON(t, h, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "user@example.com", "password": "pw", "remember": true}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
	}

	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			found = c
		}
	}
	if found == nil || found.Value != "sess-1" {
		t.Fatalf("session cookie missing: %+v", w.Result().Cookies())
	}
	if !found.HttpOnly {
		t.Fatal("cookie must be HttpOnly")
	}
	if found.MaxAge <= 0 {
		t.Fatalf("remember login must set persistent cookie, got MaxAge %d", found.MaxAge)
	}
}

func TestLogin_MFARequiredReturnsChallenge(t *testing.T) {
	as := &fakeAccounts{loginResp: &services.LoginResult{
		State:          services.LoginStateMFARequired,
		ChallengeToken: "challenge-token",
	}}
	h := newTestServer(as, &fakeDocuments{}, &fakeContent{}).Handler()

	w := doJSON(t, h, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "user@example.com", "password": "pw"}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["state"] != services.LoginStateMFARequired {
		t.Fatalf("want mfa_required, got %v", resp["state"])
	}
	if resp["challenge_token"] != "challenge-token" {
		t.Fatalf("challenge token missing: %v", resp)
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			t.Fatal("pending MFA login must not set a session cookie")
		}
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	as := &fakeAccounts{loginErr: common.ErrorUnauthorized}
	h := newTestServer(as, &fakeDocuments{}, &fakeContent{}).Handler()

	w := doJSON(t, h, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "user@example.com", "password": "wrong"}, nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
}

func TestVerifyMFA_InvalidCode(t *testing.T) {
	as := &fakeAccounts{verifyErr: common.ErrInvalidMFACode}
	h := newTestServer(as, &fakeDocuments{}, &fakeContent{}).Handler()

	w := doJSON(t, h, http.MethodPost, "/api/auth/verify-mfa",
		map[string]any{"challenge_token": "tok", "code": "000000"}, nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
}

func TestRequireSession_MissingCookie(t *testing.T) {
	h := newTestServer(&fakeAccounts{}, &fakeDocuments{}, &fakeContent{}).Handler()

	w := doJSON(t, h, http.MethodGet, "/api/profile", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
}

func TestRequireSession_ExpiredSessionClearsCookie(t *testing.T) {
	as := &fakeAccounts{authErr: common.ErrSessionExpired}
	h := newTestServer(as, &fakeDocuments{}, &fakeContent{}).Handler()

	w := doJSON(t, h, http.MethodGet, "/api/profile", nil, sessionCookie("stale"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expired session must clear the cookie")
	}
}

func TestGetProfile(t *testing.T) {
	account := &models.Account{ID: "acc-1", Email: "user@example.com", FirstName: "Somchai"}
	as := &fakeAccounts{authResp: account}
	h := newTestServer(as, &fakeDocuments{}, &fakeContent{}).Handler()

	w := doJSON(t, h, http.MethodGet, "/api/profile", nil, sessionCookie("sess-1"))
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var got models.Account
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Email != account.Email || got.FirstName != account.FirstName {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestLogout_WithoutCookieSucceeds(t *testing.T) {
	h := newTestServer(&fakeAccounts{}, &fakeDocuments{}, &fakeContent{}).Handler()

	w := doJSON(t, h, http.MethodPost, "/api/auth/logout", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
}

func TestUploadDocument(t *testing.T) {
	account := &models.Account{ID: "acc-1"}
	doc := &models.Document{ID: "doc-1", Title: "Report", Status: models.DocumentStatusCompleted}
	as := &fakeAccounts{authResp: account}
	ds := &fakeDocuments{submitResp: doc}
	h := newTestServer(as, ds, &fakeContent{}).Handler()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", "Report"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	fw, err := mw.CreateFormFile("file", "report.docx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("not really a docx"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(sessionCookie("sess-1"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", w.Code, w.Body.String())
	}
	var got models.Document
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != doc.ID {
		t.Fatalf("unexpected document: %+v", got)
	}
}

func TestUploadDocument_UnsupportedFormat(t *testing.T) {
	as := &fakeAccounts{authResp: &models.Account{ID: "acc-1"}}
	ds := &fakeDocuments{submitErr: services.ErrUnsupportedFormat}
	h := newTestServer(as, ds, &fakeContent{}).Handler()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "notes.txt")
	fw.Write([]byte("plain text"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(sessionCookie("sess-1"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	as := &fakeAccounts{authResp: &models.Account{ID: "acc-1"}}
	ds := &fakeDocuments{getErr: common.ErrorNotFound}
	h := newTestServer(as, ds, &fakeContent{}).Handler()

	w := doJSON(t, h, http.MethodGet, "/api/documents/doc-x", nil, sessionCookie("sess-1"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestDocumentHTML_ContentType(t *testing.T) {
	as := &fakeAccounts{authResp: &models.Account{ID: "acc-1"}}
	ds := &fakeDocuments{html: "<h1>Report</h1>"}
	h := newTestServer(as, ds, &fakeContent{}).Handler()

	w := doJSON(t, h, http.MethodGet, "/api/documents/doc-1/html", nil, sessionCookie("sess-1"))
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("want html content type, got %q", ct)
	}
	if w.Body.String() != "<h1>Report</h1>" {
		t.Fatalf("unexpected body: %q", w.Body.String())
	}
}

func TestPublicGetPost_DraftHidden(t *testing.T) {
	cs := &fakeContent{postResp: &models.BlogPost{ID: "p-1", Slug: "draft", Published: false}}
	h := newTestServer(&fakeAccounts{}, &fakeDocuments{}, cs).Handler()

	w := doJSON(t, h, http.MethodGet, "/public/posts/draft", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("drafts must be hidden, got %d", w.Code)
	}
}

func TestPublicDownload_RedirectsToBlob(t *testing.T) {
	cs := &fakeContent{downloadResp: &models.DownloadFile{ID: "f-1", FileKey: "downloads/form.pdf", Active: true}}
	h := newTestServer(&fakeAccounts{}, &fakeDocuments{}, cs).Handler()

	w := doJSON(t, h, http.MethodGet, "/public/downloads/f-1/file", nil, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("want 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); !strings.Contains(loc, "downloads/form.pdf") {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}

func TestWriteTimeoutCoversConverterDeadline(t *testing.T) {
	cfg := &config.Config{
		EndpointAddr:            ":0",
		SessionValidityDuration: 24 * time.Hour,
		ConvertTimeout:          120 * time.Second,
	}
	s := NewHTTPServer(cfg, nopLogger{}, &fakeAccounts{}, &fakeDocuments{}, &fakeContent{}, fakeBlobStore{})

	if s.writeTimeout <= cfg.ConvertTimeout {
		t.Fatalf("write timeout %v must exceed the converter deadline %v", s.writeTimeout, cfg.ConvertTimeout)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(&fakeAccounts{}, &fakeDocuments{}, &fakeContent{}).Handler()

	w := doJSON(t, h, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
}
