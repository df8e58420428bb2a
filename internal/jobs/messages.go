// Package jobs moves report generation work from the HTTP surface to the
// worker pool over the message bus, and runs the workers.
package jobs

import (
	"github.com/opencampus-hq/timereport/internal/models"
)

// ReportJobRequest is the bus payload for one generation job.
type ReportJobRequest struct {
	JobID       string `json:"job_id"`
	RequestorID int64  `json:"requestor_id"`
	UserID      int64  `json:"user_id"`
	Start       int64  `json:"start"` // epoch millis, as received
	End         int64  `json:"end"`   // epoch millis, as received
	ContextID   int64  `json:"context_id"`
	RequestedAt int64  `json:"requested_at"` // unix seconds
}

// ReportJobCompleted is published once a worker finished a job.
type ReportJobCompleted struct {
	JobID       string `json:"job_id"`
	UserID      int64  `json:"user_id"`
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	CompletedAt int64  `json:"completed_at"` // unix seconds
}

// Request converts the bus payload back into the service request type.
func (j *ReportJobRequest) Request() *models.GenerateReportRequest {
	return &models.GenerateReportRequest{
		RequestorID: j.RequestorID,
		UserID:      j.UserID,
		Start:       j.Start,
		End:         j.End,
		ContextID:   j.ContextID,
	}
}
