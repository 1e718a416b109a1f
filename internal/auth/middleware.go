package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// CookieName is the cookie checked when no header or query token is sent.
const CookieName = "spendly_token"

type Verifier interface {
	Verify(token string) (string, error)
}

// Middleware rejects requests without a valid token. The token is taken from
// the Authorization header, then the "token" query parameter (for downloads),
// then the session cookie.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				unauthorized(w, "missing token")
				return
			}

			userID, err := v.Verify(token)
			if err != nil {
				slog.DebugContext(r.Context(), "rejected token", "error", err)
				unauthorized(w, "invalid or expired token")

				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}

	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
