package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	config := CORSConfig{
		AllowedOrigins: []string{"https://lms.example.com", "*.example.org"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	}

	tests := []struct {
		name           string
		origin         string
		expectedOrigin string
	}{
		{
			name:           "exact origin match",
			origin:         "https://lms.example.com",
			expectedOrigin: "https://lms.example.com",
		},
		{
			name:           "wildcard subdomain match",
			origin:         "https://campus.example.org",
			expectedOrigin: "https://campus.example.org",
		},
		{
			name:           "unknown origin gets no allow header",
			origin:         "https://evil.example.net",
			expectedOrigin: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com/api/v1/targets", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			CORS(config)(handler).ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.expectedOrigin {
				t.Errorf("expected origin header %q, got %q", tt.expectedOrigin, got)
			}
			if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
				t.Errorf("unexpected methods header %q", got)
			}
			if got := w.Header().Get("Access-Control-Max-Age"); got != "600" {
				t.Errorf("unexpected max age %q", got)
			}
		})
	}

	t.Run("bare wildcard allows any origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "http://example.com/api/v1/targets", nil)
		req.Header.Set("Origin", "https://anywhere.example.net")
		w := httptest.NewRecorder()

		CORS(CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET"},
		})(handler).ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example.net" {
			t.Errorf("expected origin echoed back, got %q", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "http://example.com/api/v1/reports", nil)
		req.Header.Set("Origin", "https://lms.example.com")
		w := httptest.NewRecorder()

		CORS(config)(handler).ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("expected 204 for preflight, got %d", w.Code)
		}
	})
}
