// Package handlers exposes the report HTTP API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opencampus-hq/timereport/internal/httputil"
	"github.com/opencampus-hq/timereport/internal/logging"
	"github.com/opencampus-hq/timereport/internal/metrics"
	"github.com/opencampus-hq/timereport/internal/models"
	"github.com/opencampus-hq/timereport/internal/report"
	"github.com/opencampus-hq/timereport/internal/repository"
	"github.com/opencampus-hq/timereport/internal/service"
)

// ReadyChecker reports whether a downstream dependency is reachable.
type ReadyChecker func(ctx context.Context) error

type Handler struct {
	service *service.Service
	logger  *logging.Logger
	ready   map[string]ReadyChecker
}

func NewHandler(svc *service.Service, logger *logging.Logger, ready map[string]ReadyChecker) *Handler {
	return &Handler{
		service: svc,
		logger:  logger,
		ready:   ready,
	}
}

// HealthCheck handles GET /healthz
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ReadyCheck handles GET /readyz. It probes every registered dependency and
// reports per-dependency status.
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(h.ready))
	for name, check := range h.ready {
		if err := check(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}
	httputil.WriteJSON(w, status, map[string]interface{}{
		"ready":  status == http.StatusOK,
		"checks": checks,
	})
}

// GenerateReport handles POST /api/v1/reports
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ReportsRequested.WithLabelValues("bad_request").Inc()
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.RequestReport(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidRequest):
			metrics.ReportsRequested.WithLabelValues("bad_request").Inc()
			httputil.WriteError(w, http.StatusBadRequest, "context_id and user_id are required")
		case errors.Is(err, repository.ErrUserNotFound):
			metrics.ReportsRequested.WithLabelValues("not_found").Inc()
			httputil.WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, report.ErrMissingUsername):
			metrics.ReportsRequested.WithLabelValues("bad_request").Inc()
			httputil.WriteError(w, http.StatusBadRequest, "User has no username")
		default:
			metrics.ReportsRequested.WithLabelValues("error").Inc()
			h.logger.ErrorContext(r.Context(), "failed to queue report",
				logging.UserID(req.UserID), logging.Error(err))
			httputil.WriteError(w, http.StatusInternalServerError, "Failed to queue report generation")
		}
		return
	}

	metrics.ReportsRequested.WithLabelValues("accepted").Inc()
	httputil.WriteJSON(w, http.StatusOK, models.GenerateReportResponse{Success: true})
}

// PollReport handles POST /api/v1/reports/poll
func (h *Handler) PollReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.PollReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.PollRequests.WithLabelValues("bad_request").Inc()
		httputil.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		metrics.PollRequests.WithLabelValues("bad_request").Inc()
		httputil.WriteError(w, http.StatusBadRequest, "context_id and user_id are required")
		return
	}

	resp, err := h.service.PollReport(r.Context(), &req)
	if err != nil {
		metrics.PollRequests.WithLabelValues("error").Inc()
		h.logger.ErrorContext(r.Context(), "failed to poll report",
			logging.UserID(req.UserID), logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to poll report")
		return
	}

	if resp.Status {
		metrics.PollRequests.WithLabelValues("hit").Inc()
	} else {
		metrics.PollRequests.WithLabelValues("miss").Inc()
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// ListReports handles GET /api/v1/reports?context_id=N&user_id=N
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	contextID := httputil.ParseInt64Param(r.URL.Query().Get("context_id"), 0)
	userID := httputil.ParseInt64Param(r.URL.Query().Get("user_id"), 0)
	if contextID == 0 || userID == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "context_id and user_id are required")
		return
	}

	files, err := h.service.ListReports(r.Context(), contextID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to list reports",
			logging.UserID(userID), logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}

	if files == nil {
		files = []models.ReportFile{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"reports": files})
}

// Targets handles GET /api/v1/targets
func (h *Handler) Targets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp, err := h.service.Targets(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list targets", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "Failed to list targets")
		return
	}
	if resp.Allowed == nil {
		resp.Allowed = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
