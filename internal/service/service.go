// Package service implements the report lifecycle: accepting generation
// requests, reconstructing session time from the activity log, writing the
// CSV artifact and answering polls.
package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/opencampus-hq/timereport/internal/aggregator"
	"github.com/opencampus-hq/timereport/internal/artifact"
	"github.com/opencampus-hq/timereport/internal/jobstate"
	"github.com/opencampus-hq/timereport/internal/logging"
	"github.com/opencampus-hq/timereport/internal/metrics"
	"github.com/opencampus-hq/timereport/internal/models"
	"github.com/opencampus-hq/timereport/internal/notify"
	"github.com/opencampus-hq/timereport/internal/report"
	"github.com/opencampus-hq/timereport/internal/repository"
)

// JobPublisher queues a generation job for the worker pool.
type JobPublisher interface {
	PublishGenerate(ctx context.Context, req *models.GenerateReportRequest) error
}

// Config holds the tunables applied to every generation.
type Config struct {
	// IdleThreshold is the maximum gap in seconds still counted as one
	// continuous session.
	IdleThreshold int64

	// BorrowedTime is the flat credit in seconds granted when a session is
	// cut by an idle gap or a day boundary.
	BorrowedTime int64

	// AllowedTargets restricts which event targets feed the report. Empty
	// means all targets count.
	AllowedTargets []string

	// PublicBasePath is the URL path prefix under which artifacts are
	// served, e.g. "/reports".
	PublicBasePath string
}

// Service orchestrates report generation and retrieval.
type Service struct {
	repo      repository.Repository
	store     *artifact.Store
	state     *jobstate.Manager
	publisher JobPublisher
	notifier  notify.Channel
	logger    *logging.Logger
	cfg       Config
}

// New creates the report service.
func New(repo repository.Repository, store *artifact.Store, state *jobstate.Manager,
	publisher JobPublisher, notifier notify.Channel, logger *logging.Logger, cfg Config) *Service {
	return &Service{
		repo:      repo,
		store:     store,
		state:     state,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		cfg:       cfg,
	}
}

// RequestReport validates a generation request, removes any stale artifact
// for the same period and queues the job. The caller gets an acknowledgement
// immediately; generation happens on the worker pool.
func (s *Service) RequestReport(ctx context.Context, req *models.GenerateReportRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.repo.GetUserByID(ctx, req.UserID)
	if err != nil {
		return err
	}

	filename, err := s.filenameFor(user, req)
	if err != nil {
		return err
	}

	// A re-request for the same period regenerates from scratch: the old
	// artifact and its completion record must not satisfy polls meanwhile.
	if s.store.Exists(req.ContextID, filename) {
		if err := s.store.Delete(req.ContextID, filename); err != nil {
			return err
		}
		metrics.ArtifactsDeleted.Inc()
	}

	key := jobstate.ReportKey(req.UserID, req.StartSeconds(), req.EndSeconds())
	if err := s.state.ClearResult(ctx, key); err != nil {
		return err
	}

	if err := s.publisher.PublishGenerate(ctx, req); err != nil {
		return fmt.Errorf("queue generation job: %w", err)
	}

	s.logger.InfoContext(ctx, "report generation queued",
		logging.UserID(req.UserID),
		logging.RequestorID(req.RequestorID),
		logging.ReportKey(key),
		logging.Filename(filename))
	return nil
}

// GenerateArtifact runs one generation end to end: load the subject, scan
// the activity log, aggregate session time, write the CSV and record the
// result. Called from the worker after the job lock was acquired.
func (s *Service) GenerateArtifact(ctx context.Context, req *models.GenerateReportRequest) (*jobstate.Result, error) {
	started := time.Now()

	user, err := s.repo.GetUserByID(ctx, req.UserID)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	events, err := s.repo.GetLogEvents(ctx, req.UserID, req.StartSeconds(), req.EndSeconds(), s.cfg.AllowedTargets)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("load log events: %w", err)
	}
	metrics.EventsScanned.Add(float64(len(events)))

	totals, err := aggregator.Aggregate(events, aggregator.Config{
		IdleThreshold: s.cfg.IdleThreshold,
		BorrowedTime:  s.cfg.BorrowedTime,
	})
	outcome := metrics.OutcomeSuccess
	if err != nil {
		if !errors.Is(err, aggregator.ErrNoResults) {
			metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}
		// An empty period still produces an artifact, with a placeholder row
		// instead of daily totals.
		totals = nil
		outcome = metrics.OutcomeNoResults
	}

	start := time.Unix(req.StartSeconds(), 0).UTC()
	end := time.Unix(req.EndSeconds(), 0).UTC()

	filename, err := report.Filename(user.Username, start, end)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	data := report.BuildCSV(user, totals, start, end)
	if _, err := s.store.Save(req.ContextID, filename, data); err != nil {
		metrics.GenerationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	metrics.ArtifactsWritten.Inc()

	result := &jobstate.Result{
		Filename:    filename,
		Path:        s.downloadPath(req.ContextID, filename),
		ContextID:   req.ContextID,
		CompletedAt: time.Now().Unix(),
	}

	key := jobstate.ReportKey(req.UserID, req.StartSeconds(), req.EndSeconds())
	if err := s.state.SetResult(ctx, key, result); err != nil {
		// The artifact is on disk; polls will still find it. Record the
		// failure and carry on.
		s.logger.ErrorContext(ctx, "failed to record job result",
			logging.ReportKey(key), logging.Error(err))
	}

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, user, filename, result.Path); err != nil {
			s.logger.WarnContext(ctx, "report notification failed",
				logging.UserID(user.ID), logging.Error(err))
		}
	}

	metrics.GenerationsTotal.WithLabelValues(outcome).Inc()
	metrics.GenerationDuration.Observe(time.Since(started).Seconds())

	s.logger.InfoContext(ctx, "report generated",
		logging.UserID(user.ID),
		logging.Filename(filename),
		logging.EventCount(len(events)),
		logging.Duration(time.Since(started).Milliseconds()))
	return result, nil
}

// PollReport answers whether the requested report artifact exists yet.
// An unknown user is a non-fatal miss: the poll reports status false rather
// than failing, since the frontend keeps polling until generation finishes.
func (s *Service) PollReport(ctx context.Context, req *models.PollReportRequest) (*models.PollReportResponse, error) {
	user, err := s.repo.GetUserByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return &models.PollReportResponse{Status: false}, nil
		}
		return nil, err
	}

	key := jobstate.ReportKey(req.UserID, req.StartSeconds(), req.EndSeconds())
	if result, err := s.state.GetResult(ctx, key); err == nil && result != nil {
		return &models.PollReportResponse{Status: true, Path: result.Path}, nil
	}

	// Fall back to the filesystem: the deterministic path answers even when
	// the result cell expired.
	filename, err := s.filenameFor(user, req)
	if err != nil {
		return nil, err
	}
	if s.store.Exists(req.ContextID, filename) {
		return &models.PollReportResponse{
			Status: true,
			Path:   s.downloadPath(req.ContextID, filename),
		}, nil
	}

	return &models.PollReportResponse{Status: false}, nil
}

// ListReports returns the existing report artifacts of one user.
func (s *Service) ListReports(ctx context.Context, contextID, userID int64) ([]models.ReportFile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	files, err := s.store.ListForUser(contextID, user.Username)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].Path = s.downloadPath(contextID, files[i].Filename)
	}
	return files, nil
}

// Targets lists the distinct event targets present in the activity log
// alongside the configured allow-list.
func (s *Service) Targets(ctx context.Context) (*models.TargetsResponse, error) {
	targets, err := s.repo.GetDistinctTargets(ctx)
	if err != nil {
		return nil, err
	}
	return &models.TargetsResponse{
		Targets: targets,
		Allowed: s.cfg.AllowedTargets,
	}, nil
}

func (s *Service) filenameFor(user *models.User, req *models.GenerateReportRequest) (string, error) {
	start := time.Unix(req.StartSeconds(), 0).UTC()
	end := time.Unix(req.EndSeconds(), 0).UTC()
	return report.Filename(user.Username, start, end)
}

func (s *Service) downloadPath(contextID int64, filename string) string {
	return path.Join(s.cfg.PublicBasePath, strconv.FormatInt(contextID, 10), filename)
}
