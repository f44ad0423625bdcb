package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saireecmpo/portal/internal/common"
	"github.com/saireecmpo/portal/internal/server/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the shared sentinel errors to HTTP statuses.
// Anything unrecognized is reported as a bare 500 so internals do not leak.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, "session expired")
	case errors.Is(err, common.ErrInvalidMFACode):
		writeError(w, http.StatusUnauthorized, "invalid verification code")
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "invalid token")
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusBadRequest, "token expired")
	case errors.Is(err, common.ErrTokenUsed):
		writeError(w, http.StatusBadRequest, "token already used")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, services.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "unsupported document format")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}
