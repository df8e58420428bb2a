package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opencampus-hq/timereport/internal/messaging"
	"github.com/opencampus-hq/timereport/internal/models"
)

// Publisher queues generation jobs on the message bus. It satisfies
// service.JobPublisher.
type Publisher struct {
	bus messaging.Publisher
}

// NewPublisher creates a job publisher on top of a bus connection.
func NewPublisher(bus messaging.Publisher) *Publisher {
	return &Publisher{bus: bus}
}

// PublishGenerate queues one generation job. Each call gets a fresh job ID;
// duplicate requests for the same report are collapsed by the worker-side
// lock, not here.
func (p *Publisher) PublishGenerate(ctx context.Context, req *models.GenerateReportRequest) error {
	job := &ReportJobRequest{
		JobID:       uuid.New().String(),
		RequestorID: req.RequestorID,
		UserID:      req.UserID,
		Start:       req.Start,
		End:         req.End,
		ContextID:   req.ContextID,
		RequestedAt: time.Now().Unix(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	if err := p.bus.Publish(ctx, messaging.SubjectReportJobsGenerate, data); err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}
