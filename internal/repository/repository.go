// Package repository provides data access to the platform database: the
// activity log feeding the aggregator and the user records identifying
// report subjects.
package repository

import (
	"context"
	"errors"

	"github.com/opencampus-hq/timereport/internal/models"
)

// ErrUserNotFound is returned when a report subject does not exist.
// At poll time this is a non-fatal notice; generation never proceeds for an
// unknown user.
var ErrUserNotFound = errors.New("user not found")

// reservedCourseID is the platform's top-level site course. Its events are
// front-page noise and are always excluded from reports.
const reservedCourseID = 1

// Repository defines data access for the time report service.
type Repository interface {
	// GetUserByID loads one user record. Returns ErrUserNotFound when the
	// user does not exist.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// GetLogEvents returns the activity log rows of one user within
	// [start, end] (unix seconds, inclusive), ordered by ascending
	// timestamp, excluding the reserved course and, when allowedTargets is
	// non-empty, filtered to those targets.
	GetLogEvents(ctx context.Context, userID, start, end int64, allowedTargets []string) ([]models.LogEvent, error)

	// GetDistinctTargets lists every distinct event target present in the
	// activity log. Feeds the admin settings surface.
	GetDistinctTargets(ctx context.Context) ([]string, error)

	// CreateUser inserts a user record. Used by the seeder and tests.
	CreateUser(ctx context.Context, user *models.User) error

	// InsertLogEvents bulk-inserts activity log rows for one user.
	// Used by the seeder and tests.
	InsertLogEvents(ctx context.Context, userID int64, events []models.LogEvent) error

	// Close releases the underlying connections.
	Close()
}
