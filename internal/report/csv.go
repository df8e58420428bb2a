package report

import (
	"strings"
	"time"

	"github.com/opencampus-hq/timereport/internal/aggregator"
	"github.com/opencampus-hq/timereport/internal/models"
)

// CSV header labels. Fixed by the export format consumed downstream; the
// order and wording must not change.
const (
	labelName        = "Name"
	labelFirstName   = "First name"
	labelEmail       = "Email address"
	labelPeriod      = "Period"
	labelPeriodTotal = "Total duration for the period"
	labelDate        = "Date"
	labelDayTotal    = "Total duration per day"

	// placeholderNoResults fills the body when no events were found in range.
	placeholderNoResults = "No results found"
)

// BuildCSV renders the report artifact for one user and period.
//
// The layout is fixed: one leading empty row, then surname, first name,
// email, period, period total, a Date/Total header, then one row per day as
// (dd/mm/yyyy, HH:MM:SS). Every field is quote-wrapped, comma-delimited and
// newline-terminated. Pass a nil totals for a no-results report: the headers
// are still produced, with a human-readable placeholder instead of rows.
func BuildCSV(user *models.User, totals *models.ReportTotals, start, end time.Time) []byte {
	var grand int64
	if totals != nil {
		grand = totals.GrandTotal
	}

	rows := [][]string{
		{},
		{labelName, user.LastName},
		{labelFirstName, user.FirstName},
		{labelEmail, user.Email},
		{labelPeriod, start.Format(DateLayout) + " - " + end.Format(DateLayout)},
		{labelPeriodTotal, aggregator.FormatSeconds(float64(grand))},
		{labelDate, labelDayTotal},
	}

	if totals == nil {
		rows = append(rows, []string{placeholderNoResults})
	} else {
		for _, day := range totals.Days {
			rows = append(rows, []string{rowDate(day.Date), aggregator.FormatSeconds(float64(day.Seconds))})
		}
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteByte('"')
		b.WriteString(strings.Join(row, `","`))
		b.WriteString("\"\n")
	}
	return []byte(b.String())
}

// rowDate reformats an aggregator day bucket (YYYY-MM-DD) as dd/mm/yyyy.
// An unparseable bucket is passed through untouched.
func rowDate(day string) string {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return day
	}
	return t.Format(RowDateLayout)
}
