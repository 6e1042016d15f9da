package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arniesaha/portfolio-tracker/internal/api/middleware"
)

// TestNewCORS tests the CORS preflight behavior.
//
// WHY: Browsers must be able to send the X-API-Key header to the keyed
// mutating routes, and the advertised methods should match what the
// router serves.
func TestNewCORS(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.NewCORS([]string{"http://localhost:5173"}).Handler(okHandler)

	preflight := func(method, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/snapshots", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", method)
		if header != "" {
			req.Header.Set("Access-Control-Request-Headers", header)
		}

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("allows the API key header on preflight", func(t *testing.T) {
		w := preflight(http.MethodPost, "X-API-Key")

		allowed := w.Header().Get("Access-Control-Allow-Headers")
		if !strings.Contains(strings.ToLower(allowed), "x-api-key") {
			t.Errorf("Expected X-API-Key to be allowed, got %q", allowed)
		}
		if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "http://localhost:5173" {
			t.Errorf("Unexpected allowed origin %q", origin)
		}
	})

	t.Run("rejects methods the router does not serve", func(t *testing.T) {
		w := preflight(http.MethodPut, "")

		if w.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("Expected PUT preflight to be refused")
		}
	})

	t.Run("ignores unknown origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/snapshots", nil)
		req.Header.Set("Origin", "http://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("Expected unknown origin to receive no CORS headers")
		}
	})
}
