package auth

import (
	"net/http"
	"strings"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
	"github.com/georgemunganga/cafepos/internal/platform/web"
)

// SessionCookie is the cookie set on login for browser clients.
const SessionCookie = "session"

// Authenticate resolves the caller from a bearer token or the session cookie
// and the current state of their account.
func Authenticate(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFrom(r)
			if token == "" {
				web.Error(w, r, apperr.Unauthorizedf("authentication required"))
				return
			}
			id, err := svc.Identify(r.Context(), token)
			if err != nil {
				web.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(web.WithIdentity(r.Context(), id)))
		})
	}
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
