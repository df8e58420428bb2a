package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencampus-hq/timereport/internal/handlers"
	"github.com/opencampus-hq/timereport/internal/logging"
	"github.com/opencampus-hq/timereport/internal/middleware"
)

func newTestRouter(t *testing.T, artifactsDir string) http.Handler {
	t.Helper()
	logger := logging.New(slog.LevelError, "text")
	h := handlers.NewHandler(nil, logger, nil)
	return NewRouter(h, logger, Config{
		ArtifactsDir:   artifactsDir,
		PublicBasePath: "/reports",
		CORS: middleware.CORSConfig{
			AllowedOrigins: []string{"https://lms.example.com"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		},
	})
}

func TestRouter_Probes(t *testing.T) {
	router := newTestRouter(t, t.TempDir())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := newTestRouter(t, t.TempDir())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, t.TempDir())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/v1/reports", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_ArtifactDownload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "5"), 0o755))
	const name = "report__jean_dupont__01-01-2024_31-01-2024.csv"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "5", name), []byte(`""`+"\n"), 0o644))

	router := newTestRouter(t, dir)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/5/"+name, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `""`+"\n", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/5/missing.csv", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
