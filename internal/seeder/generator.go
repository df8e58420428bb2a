// Package seeder generates realistic users and activity logs for local
// development and load testing.
package seeder

import (
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/opencampus-hq/timereport/internal/models"
)

// defaultTargets mirror the event targets a learning platform typically logs.
var defaultTargets = []string{
	"course_module",
	"course",
	"discussion",
	"post",
	"attempt",
	"grade_report",
	"user_profile",
}

// Options controls the generated data shape.
type Options struct {
	// Users is the number of users to generate.
	Users int

	// Days is how many days of history to generate, counting back from now.
	Days int

	// MaxSessionsPerDay caps the study sessions per user per day.
	// Each day gets between zero and this many sessions.
	MaxSessionsPerDay int

	// Targets overrides the event target pool. Empty uses the default set.
	Targets []string

	// Seed makes generation reproducible when non-zero.
	Seed int64
}

// DefaultOptions returns options producing a small but useful dataset.
func DefaultOptions() Options {
	return Options{
		Users:             10,
		Days:              30,
		MaxSessionsPerDay: 3,
	}
}

// Generator produces fake users and their activity logs.
type Generator struct {
	opts Options
	rng  *rand.Rand
}

// New creates a generator.
func New(opts Options) *Generator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	if opts.MaxSessionsPerDay <= 0 {
		opts.MaxSessionsPerDay = 3
	}
	if len(opts.Targets) == 0 {
		opts.Targets = defaultTargets
	}
	return &Generator{
		opts: opts,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Users generates the configured number of users with sequential IDs
// starting at 2. ID 1 is left free so tests and seeds never collide with
// conventions reserving it.
func (g *Generator) Users() []models.User {
	users := make([]models.User, 0, g.opts.Users)
	for i := 0; i < g.opts.Users; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		users = append(users, models.User{
			ID:        int64(i + 2),
			Username:  first + " " + last,
			FirstName: first,
			LastName:  last,
			Email:     gofakeit.Email(),
		})
	}
	return users
}

// EventsFor generates an activity log for one user covering the configured
// day range. Sessions land in working hours and their events are spaced a
// few minutes apart, so most of a session counts as continuous activity.
func (g *Generator) EventsFor(user *models.User) []models.LogEvent {
	var events []models.LogEvent
	now := time.Now().UTC()

	for day := g.opts.Days; day > 0; day-- {
		date := now.AddDate(0, 0, -day)
		sessions := g.rng.Intn(g.opts.MaxSessionsPerDay + 1)

		for s := 0; s < sessions; s++ {
			// Session starts between 08:00 and 20:00.
			start := time.Date(date.Year(), date.Month(), date.Day(),
				8+g.rng.Intn(12), g.rng.Intn(60), g.rng.Intn(60), 0, time.UTC)

			count := 3 + g.rng.Intn(20)
			ts := start.Unix()
			for e := 0; e < count; e++ {
				events = append(events, models.LogEvent{
					Timestamp: ts,
					Day:       start.Format("2006-01-02"),
					CourseID:  int64(2 + g.rng.Intn(5)),
					Target:    g.opts.Targets[g.rng.Intn(len(g.opts.Targets))],
				})
				// Mostly short gaps; the occasional idle break past the
				// default threshold.
				if g.rng.Intn(10) == 0 {
					ts += int64(1900 + g.rng.Intn(1200))
				} else {
					ts += int64(30 + g.rng.Intn(480))
				}
			}
		}
	}
	return events
}
