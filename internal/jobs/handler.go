package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/opencampus-hq/timereport/internal/jobstate"
	"github.com/opencampus-hq/timereport/internal/logging"
	"github.com/opencampus-hq/timereport/internal/messaging"
	"github.com/opencampus-hq/timereport/internal/metrics"
	"github.com/opencampus-hq/timereport/internal/middleware"
	"github.com/opencampus-hq/timereport/internal/repository"
	"github.com/opencampus-hq/timereport/internal/service"
)

// Worker consumes generation jobs from the bus. Instances share a queue
// group so each job is processed once regardless of how many workers run.
type Worker struct {
	bus    messaging.Client
	svc    *service.Service
	state  *jobstate.Manager
	logger *logging.Logger
	sub    messaging.Subscription
}

// NewWorker creates a report generation worker.
func NewWorker(bus messaging.Client, svc *service.Service, state *jobstate.Manager, logger *logging.Logger) *Worker {
	return &Worker{
		bus:    bus,
		svc:    svc,
		state:  state,
		logger: logger,
	}
}

// Start subscribes the worker to the generation subject.
func (w *Worker) Start() error {
	sub, err := w.bus.QueueSubscribe(messaging.SubjectReportJobsGenerate, messaging.QueueReportWorkers, w.handleGenerate)
	if err != nil {
		return err
	}
	w.sub = sub

	w.logger.Info("report worker started",
		logging.Component("worker"),
		"subject", messaging.SubjectReportJobsGenerate,
		"queue", messaging.QueueReportWorkers)
	return nil
}

// Stop unsubscribes the worker. In-flight jobs finish.
func (w *Worker) Stop() error {
	if w.sub == nil {
		return nil
	}
	return w.sub.Unsubscribe()
}

func (w *Worker) handleGenerate(ctx context.Context, msg *messaging.Message) error {
	var job ReportJobRequest
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		// A malformed payload will never parse on retry.
		w.logger.ErrorContext(ctx, "dropping malformed job",
			logging.Component("worker"), logging.Error(err))
		return nil
	}

	// Carry the job ID as the request ID so worker logs correlate with the
	// originating HTTP request trail.
	ctx = middleware.WithRequestID(ctx, job.JobID)
	req := job.Request()

	key := jobstate.ReportKey(req.UserID, req.StartSeconds(), req.EndSeconds())
	acquired, err := w.state.AcquireLock(ctx, key)
	if err != nil {
		return err
	}
	if !acquired {
		// Another worker is already generating this exact report.
		metrics.JobsDropped.Inc()
		w.logger.InfoContext(ctx, "duplicate job dropped",
			logging.Component("worker"),
			logging.JobID(job.JobID),
			logging.ReportKey(key))
		return nil
	}
	defer func() {
		if err := w.state.ReleaseLock(context.WithoutCancel(ctx), key); err != nil {
			w.logger.WarnContext(ctx, "failed to release job lock",
				logging.ReportKey(key), logging.Error(err))
		}
	}()

	result, err := w.svc.GenerateArtifact(ctx, req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// The subject vanished between request and generation. Retrying
			// cannot help.
			w.logger.WarnContext(ctx, "job subject not found",
				logging.JobID(job.JobID), logging.UserID(req.UserID))
			return nil
		}
		w.logger.ErrorContext(ctx, "report generation failed",
			logging.JobID(job.JobID),
			logging.UserID(req.UserID),
			logging.Error(err))
		return err
	}

	w.publishCompleted(ctx, &job, result)
	return nil
}

// publishCompleted emits the completion event. Best effort: the artifact is
// already on disk and polls will find it even if nobody hears this.
func (w *Worker) publishCompleted(ctx context.Context, job *ReportJobRequest, result *jobstate.Result) {
	completed := &ReportJobCompleted{
		JobID:       job.JobID,
		UserID:      job.UserID,
		Filename:    result.Filename,
		Path:        result.Path,
		CompletedAt: time.Now().Unix(),
	}

	data, err := json.Marshal(completed)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to marshal completion event",
			logging.JobID(job.JobID), logging.Error(err))
		return
	}

	if err := w.bus.Publish(ctx, messaging.ReportCompletedSubject(job.JobID), data); err != nil {
		w.logger.WarnContext(ctx, "failed to publish completion event",
			logging.JobID(job.JobID), logging.Error(err))
	}
}
