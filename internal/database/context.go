package database

import (
	"context"
	"time"
)

// Standard timeout durations for database operations.
const (
	// DefaultQueryTimeout is the timeout for read queries.
	DefaultQueryTimeout = 5 * time.Second

	// DefaultWriteTimeout is the timeout for write operations.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultScanTimeout is the timeout for full activity-log range scans.
	// A month of events for an active user can be tens of thousands of rows.
	DefaultScanTimeout = 30 * time.Second
)

// QueryContext creates a context with DefaultQueryTimeout.
// Use this for point lookups such as user records.
func QueryContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultQueryTimeout)
}

// WriteContext creates a context with DefaultWriteTimeout.
// Use this for INSERT, UPDATE, DELETE operations.
func WriteContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultWriteTimeout)
}

// ScanContext creates a context with DefaultScanTimeout.
// Use this for activity-log range queries feeding the aggregator.
func ScanContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultScanTimeout)
}
