// Package server wires the HTTP surface: API routes, artifact downloads,
// health probes and metrics, wrapped in the middleware chain.
package server

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opencampus-hq/timereport/internal/handlers"
	"github.com/opencampus-hq/timereport/internal/logging"
	"github.com/opencampus-hq/timereport/internal/middleware"
)

// Config holds the router configuration.
type Config struct {
	// ArtifactsDir is served read-only under PublicBasePath for report
	// downloads.
	ArtifactsDir string

	// PublicBasePath is the URL prefix for artifact downloads, e.g. "/reports".
	PublicBasePath string

	CORS middleware.CORSConfig
}

// NewRouter constructs the ServeMux with all routes registered.
func NewRouter(h *handlers.Handler, logger *logging.Logger, cfg Config) http.Handler {
	mux := http.NewServeMux()

	// Probes and metrics
	mux.HandleFunc("/healthz", h.HealthCheck)
	mux.HandleFunc("/readyz", h.ReadyCheck)
	mux.Handle("/metrics", promhttp.Handler())

	// Reports API
	mux.HandleFunc("/api/v1/reports", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.GenerateReport(w, r)
		} else if r.Method == http.MethodGet {
			h.ListReports(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/api/v1/reports/poll", h.PollReport)
	mux.HandleFunc("/api/v1/targets", h.Targets)

	// Artifact downloads
	base := strings.TrimSuffix(cfg.PublicBasePath, "/")
	if base != "" && cfg.ArtifactsDir != "" {
		fs := http.FileServer(http.Dir(cfg.ArtifactsDir))
		mux.Handle(base+"/", http.StripPrefix(base+"/", fs))
	}

	// Middleware chain, outermost first.
	var handler http.Handler = mux
	handler = middleware.Logging(logger.Logger)(handler)
	handler = middleware.CORS(cfg.CORS)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
