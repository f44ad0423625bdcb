package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/saireecmpo/portal/internal/server/models"
	"github.com/saireecmpo/portal/internal/server/services"
)

type ctxKey string

const accountKey ctxKey = "account"

// sessionCookieName is the browser-side handle for the server-side session.
const sessionCookieName = "portal_session"

// requireSession resolves the session cookie to an account and stores it in
// the request context. Requests without a valid session get 401.
func (s *HTTPServer) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		account, err := s.accounts.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			s.clearSessionCookie(w)
			writeServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), accountKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accountFromContext returns the account stored by requireSession.
func accountFromContext(ctx context.Context) *models.Account {
	account, _ := ctx.Value(accountKey).(*models.Account)
	return account
}

func (s *HTTPServer) setSessionCookie(w http.ResponseWriter, sessionID string, remember bool) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	// Without remember the cookie stays session-scoped and dies with the
	// browser, even though the server-side row lives until its expiry.
	if remember {
		cookie.MaxAge = int(s.sessionValidity.Seconds())
	}
	http.SetCookie(w, cookie)
}

func (s *HTTPServer) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// clientInfo extracts the caller address and agent recorded with login
// attempts. The first X-Forwarded-For entry wins when a proxy is in front.
func clientInfo(r *http.Request) services.ClientInfo {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		ip = strings.TrimSpace(ip)
	} else {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	return services.ClientInfo{IPAddress: ip, UserAgent: r.UserAgent()}
}
