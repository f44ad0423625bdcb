package httpapi

import (
	"net/http"
	"strconv"

	"github.com/saireecmpo/portal/internal/server/services"
)

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	result, err := s.accounts.Login(r.Context(), req.Email, req.Password, req.Remember, clientInfo(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if result.State == services.LoginStateMFARequired {
		writeJSON(w, http.StatusOK, map[string]any{
			"state":           result.State,
			"challenge_token": result.ChallengeToken,
		})
		return
	}

	s.setSessionCookie(w, result.SessionID, req.Remember)
	writeJSON(w, http.StatusOK, map[string]any{
		"state":   result.State,
		"account": result.Account,
	})
}

func (s *HTTPServer) handleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChallengeToken string `json:"challenge_token"`
		Code           string `json:"code"`
		UseBackupCode  bool   `json:"use_backup_code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ChallengeToken == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	result, err := s.accounts.VerifyMFA(r.Context(), req.ChallengeToken, req.Code, req.UseBackupCode, clientInfo(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.setSessionCookie(w, result.SessionID, result.Remember)
	writeJSON(w, http.StatusOK, map[string]any{
		"state":   result.State,
		"account": result.Account,
	})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := s.accounts.Logout(r.Context(), cookie.Value); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *HTTPServer) handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	if err := s.accounts.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If the address is registered, a reset link has been sent",
	})
}

func (s *HTTPServer) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	if err := s.accounts.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password reset successful"})
}

func (s *HTTPServer) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	account, err := s.accounts.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *HTTPServer) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, accountFromContext(r.Context()))
}

func (s *HTTPServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	var req struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Phone      string `json:"phone"`
		Position   string `json:"position"`
		Department string `json:"department"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	account.FirstName = req.FirstName
	account.LastName = req.LastName
	account.Phone = req.Phone
	account.Position = req.Position
	account.Department = req.Department

	if err := s.accounts.UpdateProfile(r.Context(), account); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *HTTPServer) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	if err := s.accounts.ChangePassword(r.Context(), account.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (s *HTTPServer) handleLoginHistory(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	attempts, err := s.accounts.LoginHistory(r.Context(), account.Email, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (s *HTTPServer) handleBeginMFASetup(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	secret, uri, err := s.accounts.BeginMFASetup(r.Context(), account.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"secret": secret, "uri": uri})
}

func (s *HTTPServer) handleConfirmMFASetup(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	var req struct {
		Secret string `json:"secret"`
		Code   string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Secret == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	codes, err := s.accounts.ConfirmMFASetup(r.Context(), account.ID, req.Secret, req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backup_codes": codes})
}

func (s *HTTPServer) handleDisableMFA(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.accounts.DisableMFA(r.Context(), account.ID, req.Password); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "mfa disabled"})
}

func (s *HTTPServer) handleBackupCodeCount(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	count, err := s.accounts.RemainingBackupCodes(r.Context(), account.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"remaining": count})
}

func (s *HTTPServer) handleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	account := accountFromContext(r.Context())

	codes, err := s.accounts.RegenerateBackupCodes(r.Context(), account.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backup_codes": codes})
}
