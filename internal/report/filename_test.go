package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jean Dupont", "jean_dupont"},
		{"jean dupont", "jeandupont"},
		{"JeanDupont", "jean_dupont"},
		{"Marie Claire Dubois", "marie_claire_dubois"},
		{"alice", "alice"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToSnakeCase(tt.in))
		})
	}
}

func TestFilename(t *testing.T) {
	name, err := Filename("Jean Dupont", date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Equal(t, "report__jean_dupont__01-01-2024_31-01-2024.csv", name)
}

func TestFilename_MissingUsername(t *testing.T) {
	_, err := Filename("", date(2024, time.January, 1), date(2024, time.January, 31))
	require.ErrorIs(t, err, ErrMissingUsername)
}

func TestUserIDFromFilename(t *testing.T) {
	// Only filenames whose username segment is a bare numeric ID yield one.
	id, err := UserIDFromFilename("report__42__01-01-2024_31-01-2024.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = UserIDFromFilename("report__jean_dupont__01-01-2024_31-01-2024.csv")
	assert.Error(t, err)

	_, err = UserIDFromFilename("report.csv")
	assert.Error(t, err)
}
