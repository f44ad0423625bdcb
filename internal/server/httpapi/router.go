package httpapi

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Handler builds the full route table wrapped in access logging.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Unauthenticated auth flows.
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/verify-mfa", s.handleVerifyMFA).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/password-reset", s.handlePasswordResetRequest).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/password-reset/confirm", s.handlePasswordResetConfirm).Methods(http.MethodPost)

	// Public site content.
	r.HandleFunc("/public/posts", s.handlePublicListPosts).Methods(http.MethodGet)
	r.HandleFunc("/public/posts/{slug}", s.handlePublicGetPost).Methods(http.MethodGet)
	r.HandleFunc("/public/announcements", s.handlePublicListAnnouncements).Methods(http.MethodGet)
	r.HandleFunc("/public/activities", s.handlePublicListActivities).Methods(http.MethodGet)
	r.HandleFunc("/public/downloads", s.handlePublicListDownloads).Methods(http.MethodGet)
	r.HandleFunc("/public/downloads/{id}/file", s.handlePublicDownloadFile).Methods(http.MethodGet)

	// Everything below requires a session.
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireSession)

	api.HandleFunc("/accounts", s.handleCreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/profile", s.handleGetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.handleUpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/profile/password", s.handleChangePassword).Methods(http.MethodPost)
	api.HandleFunc("/profile/login-history", s.handleLoginHistory).Methods(http.MethodGet)

	api.HandleFunc("/mfa/setup", s.handleBeginMFASetup).Methods(http.MethodPost)
	api.HandleFunc("/mfa/confirm", s.handleConfirmMFASetup).Methods(http.MethodPost)
	api.HandleFunc("/mfa/disable", s.handleDisableMFA).Methods(http.MethodPost)
	api.HandleFunc("/mfa/backup-codes", s.handleBackupCodeCount).Methods(http.MethodGet)
	api.HandleFunc("/mfa/backup-codes", s.handleRegenerateBackupCodes).Methods(http.MethodPost)

	api.HandleFunc("/documents", s.handleUploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents", s.handleListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", s.handleGetDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", s.handleDeleteDocument).Methods(http.MethodDelete)
	api.HandleFunc("/documents/{id}/reprocess", s.handleReprocessDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}/pdf", s.handleDocumentPDF).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/html", s.handleDocumentHTML).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/logs", s.handleDocumentLogs).Methods(http.MethodGet)

	api.HandleFunc("/posts", s.handleListPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts", s.handleCreatePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", s.handleUpdatePost).Methods(http.MethodPut)
	api.HandleFunc("/posts/{id}", s.handleDeletePost).Methods(http.MethodDelete)
	api.HandleFunc("/announcements", s.handleListAnnouncements).Methods(http.MethodGet)
	api.HandleFunc("/announcements", s.handleCreateAnnouncement).Methods(http.MethodPost)
	api.HandleFunc("/announcements/{id}", s.handleDeleteAnnouncement).Methods(http.MethodDelete)
	api.HandleFunc("/activities", s.handleListActivities).Methods(http.MethodGet)
	api.HandleFunc("/activities", s.handleCreateActivity).Methods(http.MethodPost)
	api.HandleFunc("/activities/{id}", s.handleDeleteActivity).Methods(http.MethodDelete)
	api.HandleFunc("/downloads", s.handleListDownloads).Methods(http.MethodGet)
	api.HandleFunc("/downloads", s.handleCreateDownload).Methods(http.MethodPost)
	api.HandleFunc("/downloads/{id}", s.handleDeleteDownload).Methods(http.MethodDelete)

	return handlers.LoggingHandler(os.Stdout, r)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
