// Package models defines the data types shared across the time report service.
package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest indicates a report request missing required identifying
// fields. It is a hard validation failure, surfaced to the caller and never
// retried.
var ErrInvalidRequest = errors.New("invalid report request")

// LogEvent is a single row from the activity log, strongly typed at the
// repository boundary. Events are always handed to the aggregator in
// ascending Timestamp order.
type LogEvent struct {
	ID        int64  `json:"id"`
	Timestamp int64  `json:"timestamp"` // unix seconds
	Day       string `json:"day"`       // calendar day bucket, YYYY-MM-DD
	CourseID  int64  `json:"course_id"`
	Target    string `json:"target"`
}

// User identifies the learner a report is generated for.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"` // display name, used for the filename
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// DailyTotal is the accounted active time for one calendar day.
type DailyTotal struct {
	Date    string `json:"date"`    // YYYY-MM-DD
	Seconds int64  `json:"seconds"` // accounted seconds for that day
}

// ReportTotals is the aggregator output: one entry per day with accounted
// activity, plus the grand total over the whole period.
type ReportTotals struct {
	Days       []DailyTotal `json:"days"`
	GrandTotal int64        `json:"grand_total"`
}

// GenerateReportRequest triggers asynchronous report generation.
// Start and End are epoch milliseconds as sent by the frontend and must be
// divided by 1000 before use.
type GenerateReportRequest struct {
	RequestorID int64 `json:"requestor_id"`
	UserID      int64 `json:"user_id"`
	Start       int64 `json:"start"` // epoch millis
	End         int64 `json:"end"`   // epoch millis
	ContextID   int64 `json:"context_id"`
}

// Validate checks the required identifying fields.
func (r *GenerateReportRequest) Validate() error {
	if r.ContextID == 0 || r.UserID == 0 {
		return fmt.Errorf("%w: missing context_id or user_id", ErrInvalidRequest)
	}
	return nil
}

// StartSeconds returns the period start as unix seconds.
func (r *GenerateReportRequest) StartSeconds() int64 {
	return r.Start / 1000
}

// EndSeconds returns the period end as unix seconds.
func (r *GenerateReportRequest) EndSeconds() int64 {
	return r.End / 1000
}

// PollReportRequest asks whether a report artifact exists yet.
// It carries the same identifying fields as the generation request.
type PollReportRequest = GenerateReportRequest

// PollReportResponse is the poll endpoint reply. Status turns true once the
// artifact exists at its deterministic path.
type PollReportResponse struct {
	Status bool   `json:"status"`
	Path   string `json:"path"`
}

// GenerateReportResponse acknowledges that a generation job was queued.
type GenerateReportResponse struct {
	Success bool `json:"success"`
}

// ReportFile describes an existing report artifact.
type ReportFile struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// TargetsResponse lists the distinct event targets present in the activity
// log and the configured allow-list applied to report queries.
type TargetsResponse struct {
	Targets []string `json:"targets"`
	Allowed []string `json:"allowed"`
}
