package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request surface metrics
	ReportsRequested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timereport_reports_requested_total",
			Help: "Total number of report generation requests",
		},
		[]string{"status"},
	)

	PollRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timereport_poll_requests_total",
			Help: "Total number of report poll requests",
		},
		[]string{"status"},
	)

	// Worker metrics
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timereport_generations_total",
			Help: "Total number of report generations by outcome",
		},
		[]string{"outcome"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "timereport_generation_duration_seconds",
			Help:    "Duration of report generation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	EventsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timereport_events_scanned_total",
			Help: "Total number of activity log events scanned by the aggregator",
		},
	)

	JobsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timereport_jobs_dropped_total",
			Help: "Total number of jobs dropped because the report was already being generated",
		},
	)

	// Artifact metrics
	ArtifactsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timereport_artifacts_written_total",
			Help: "Total number of CSV artifacts written",
		},
	)

	ArtifactsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "timereport_artifacts_deleted_total",
			Help: "Total number of stale CSV artifacts deleted",
		},
	)
)

// Generation outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeNoResults = "no_results"
	OutcomeError     = "error"
)
