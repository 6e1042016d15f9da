package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/arniesaha/portfolio-tracker/internal/api/response"
)

// APIKeyMiddleware guards mutating endpoints with a shared key. The
// expected key comes from the INTERNAL_API_KEY environment variable and
// callers present theirs in the X-API-Key header. When no key is
// configured the middleware lets everything through, which is the local
// development posture.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv("INTERNAL_API_KEY")
		if expected == "" {
			next.ServeHTTP(w, r)
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
