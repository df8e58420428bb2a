package seeder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Users(t *testing.T) {
	g := New(Options{Users: 5, Days: 1, Seed: 42})
	users := g.Users()
	require.Len(t, users, 5)

	for i, u := range users {
		assert.Equal(t, int64(i+2), u.ID)
		assert.NotEmpty(t, u.Username)
		assert.NotEmpty(t, u.Email)
		assert.Contains(t, u.Username, u.FirstName)
		assert.Contains(t, u.Username, u.LastName)
	}
}

func TestGenerator_EventsFor(t *testing.T) {
	g := New(Options{Users: 1, Days: 14, MaxSessionsPerDay: 3, Seed: 42})
	users := g.Users()
	events := g.EventsFor(&users[0])
	require.NotEmpty(t, events)

	for _, e := range events {
		assert.NotZero(t, e.Timestamp)
		assert.NotEmpty(t, e.Day)
		assert.NotEmpty(t, e.Target)
		// The reserved site course never appears in seeded data.
		assert.NotEqual(t, int64(1), e.CourseID)
	}
}

func TestGenerator_Reproducible(t *testing.T) {
	a := New(Options{Users: 3, Days: 7, Seed: 7}).Users()
	b := New(Options{Users: 3, Days: 7, Seed: 7}).Users()
	assert.Equal(t, a, b)
}
