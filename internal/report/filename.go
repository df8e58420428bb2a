// Package report builds the CSV report artifact and its deterministic
// filename from aggregated daily totals.
package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ErrMissingUsername indicates that filename generation was attempted for a
// user without a username. Fatal to that request.
var ErrMissingUsername = errors.New("missing username")

// DateLayout is the dd-mm-yyyy layout used in filenames and CSV headers.
const DateLayout = "02-01-2006"

// RowDateLayout is the dd/mm/yyyy layout used for per-day CSV rows.
const RowDateLayout = "02/01/2006"

// ToSnakeCase converts a display name to its snake_case filename form.
// Whitespace is stripped first, then every capital is lowercased with an
// underscore prefix; a leading underscore is trimmed.
func ToSnakeCase(s string) string {
	var stripped strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			stripped.WriteRune(r)
		}
	}

	var b strings.Builder
	for _, r := range stripped.String() {
		if unicode.IsUpper(r) {
			b.WriteRune('_')
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimPrefix(b.String(), "_")
}

// Filename derives the deterministic report artifact name:
//
//	report__<snake_case username>__<dd-mm-yyyy start>_<dd-mm-yyyy end>.csv
func Filename(username string, start, end time.Time) (string, error) {
	if username == "" {
		return "", ErrMissingUsername
	}
	return "report__" + ToSnakeCase(username) +
		"__" + start.Format(DateLayout) +
		"_" + end.Format(DateLayout) + ".csv", nil
}

// UserIDFromFilename extracts a numeric user ID from a report filename whose
// username part is a bare user ID. Filenames with textual usernames have no
// numeric third segment and return an error.
func UserIDFromFilename(filename string) (int64, error) {
	parts := strings.Split(filename, "_")
	if len(parts) < 3 {
		return 0, fmt.Errorf("no user id segment in %q", filename)
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("no numeric user id in %q", filename)
	}
	return id, nil
}
