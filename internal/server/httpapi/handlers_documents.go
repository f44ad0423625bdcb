package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// maxUploadSize caps document uploads at 50 MB, matching the largest office
// files the pipeline is expected to handle.
const maxUploadSize = 50 << 20

func (s *HTTPServer) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
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

	doc, err := s.documents.Submit(r.Context(), account.ID, title, header.Filename, file)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *HTTPServer) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	docs, err := s.documents.List(r.Context(), account.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *HTTPServer) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())
	id := mux.Vars(r)["id"]

	doc, err := s.documents.Get(r.Context(), id, account.ID, true)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())
	id := mux.Vars(r)["id"]

	if err := s.documents.Delete(r.Context(), id, account.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

func (s *HTTPServer) handleReprocessDocument(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())
	id := mux.Vars(r)["id"]

	doc, err := s.documents.Reprocess(r.Context(), id, account.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleDocumentPDF(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())
	id := mux.Vars(r)["id"]

	url, err := s.documents.PDFDownloadURL(r.Context(), id, account.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *HTTPServer) handleDocumentHTML(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())
	id := mux.Vars(r)["id"]

	html, err := s.documents.HTML(r.Context(), id, account.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (s *HTTPServer) handleDocumentLogs(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())
	id := mux.Vars(r)["id"]

	logs, err := s.documents.Logs(r.Context(), id, account.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
