package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/saireecmpo/portal/internal/server/models"
	"github.com/saireecmpo/portal/internal/server/storage"
)

// ---- public site ----

func (s *HTTPServer) handlePublicListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.content.ListPosts(r.Context(), true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *HTTPServer) handlePublicGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.content.GetPost(r.Context(), mux.Vars(r)["slug"], true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !post.Published {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *HTTPServer) handlePublicListAnnouncements(w http.ResponseWriter, r *http.Request) {
	items, err := s.content.ListAnnouncements(r.Context(), true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handlePublicListActivities(w http.ResponseWriter, r *http.Request) {
	items, err := s.content.ListActivities(r.Context(), true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handlePublicListDownloads(w http.ResponseWriter, r *http.Request) {
	items, err := s.content.ListDownloadFiles(r.Context(), true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handlePublicDownloadFile records the download and redirects the browser
// to a presigned blob URL.
func (s *HTTPServer) handlePublicDownloadFile(w http.ResponseWriter, r *http.Request) {
	f, err := s.content.RecordDownload(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	url, err := s.store.PresignGet(r.Context(), f.FileKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// ---- dashboard ----

func (s *HTTPServer) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.content.ListPosts(r.Context(), false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *HTTPServer) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	var req struct {
		Title            string `json:"title"`
		ShortDescription string `json:"short_description"`
		Body             string `json:"body"`
		Published        bool   `json:"published"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	post, err := s.content.CreatePost(r.Context(), account.ID, req.Title, req.ShortDescription, req.Body, req.Published)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *HTTPServer) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var post models.BlogPost
	if !decodeJSON(w, r, &post) {
		return
	}
	post.ID = mux.Vars(r)["id"]

	if err := s.content.UpdatePost(r.Context(), &post); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *HTTPServer) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeletePost(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (s *HTTPServer) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	items, err := s.content.ListAnnouncements(r.Context(), false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	var a models.Announcement
	if !decodeJSON(w, r, &a) {
		return
	}
	if a.Title == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	a.AccountID = account.ID

	if err := s.content.CreateAnnouncement(r.Context(), &a); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *HTTPServer) handleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeleteAnnouncement(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (s *HTTPServer) handleListActivities(w http.ResponseWriter, r *http.Request) {
	items, err := s.content.ListActivities(r.Context(), false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	var a models.Activity
	if !decodeJSON(w, r, &a) {
		return
	}
	if a.Title == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	if a.EventDate.IsZero() {
		a.EventDate = time.Now()
	}
	a.AccountID = account.ID

	if err := s.content.CreateActivity(r.Context(), &a); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *HTTPServer) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeleteActivity(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (s *HTTPServer) handleListDownloads(w http.ResponseWriter, r *http.Request) {
	items, err := s.content.ListDownloadFiles(r.Context(), false)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleCreateDownload stores the uploaded blob and registers the download
// record in one step.
func (s *HTTPServer) handleCreateDownload(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}

	key := storage.MakeStorageKey("downloads", header.Filename)
	if err := s.store.Save(r.Context(), key, file, header.Header.Get("Content-Type")); err != nil {
		writeServiceError(w, err)
		return
	}

	f := &models.DownloadFile{
		Title:            title,
		ShortDescription: r.FormValue("short_description"),
		FileKey:          key,
		FileName:         header.Filename,
		Active:           r.FormValue("active") != "false",
		AccountID:        account.ID,
	}
	if err := s.content.CreateDownloadFile(r.Context(), f); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *HTTPServer) handleDeleteDownload(w http.ResponseWriter, r *http.Request) {
	if err := s.content.DeleteDownloadFile(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
