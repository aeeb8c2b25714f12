package middleware

import (
	"net/http"
	"strings"

	"github.com/visualink/studio/internal/response"
)

// Checker validates an admin credential. *auth.Gate satisfies it.
type Checker interface {
	Check(credential string) error
}

// Credential extracts the admin credential from a request. It looks at the
// Authorization header (raw secret or "Bearer <session token>") and falls
// back to the "token" query parameter.
func Credential(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return h
	}
	return r.URL.Query().Get("token")
}

// RequireAdmin returns middleware that rejects requests whose credential the
// checker does not accept. Rejected requests never reach the handler.
func RequireAdmin(gate Checker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.Check(Credential(r)); err != nil {
				response.Unauthorized(w, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
