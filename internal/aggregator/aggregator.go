// Package aggregator reconstructs a user's active time-on-platform from an
// ordered sequence of activity log events.
//
// The algorithm is a single forward pass with pairwise lookahead. Consecutive
// events on the same calendar day either extend the day's accounted time by
// the gap between them, or, when the gap exceeds the idle threshold, credit a
// flat "borrowed time" amount instead and discard the gap. A day's last event
// (and any event followed by a different calendar day) also earns one
// borrowed-time credit.
package aggregator

import (
	"errors"

	"github.com/opencampus-hq/timereport/internal/models"
)

// ErrNoResults is returned when the input holds no events at all. Callers
// must distinguish "no events in range" from "events summed to zero".
var ErrNoResults = errors.New("no log events found in range")

// Config holds the idle-gap policy constants for one aggregation run.
type Config struct {
	// IdleThreshold is the maximum gap, in seconds, between two consecutive
	// events still considered continuous activity.
	IdleThreshold int64

	// BorrowedTime is the flat credit, in seconds, applied once per detected
	// idle break or day end, independent of actual gap length.
	BorrowedTime int64
}

// Aggregate scans events in order and produces per-day accounted totals plus
// a grand total. Events must be sorted by ascending timestamp; the scan is a
// streaming pairwise pass and is not order-independent.
//
// An empty input returns ErrNoResults.
func Aggregate(events []models.LogEvent, cfg Config) (*models.ReportTotals, error) {
	if len(events) == 0 {
		return nil, ErrNoResults
	}

	anchor := events[0] // day bucket currently being accumulated
	var dayTotal int64
	totals := &models.ReportTotals{}

	for i := range events {
		item := events[i]

		var next *models.LogEvent
		if i+1 < len(events) {
			next = &events[i+1]
		}

		// Terminal flush. Checked before the day-boundary reset: a trailing
		// single-event day therefore inherits the still-unreset accumulator
		// of the previous day. Faithful to the historical behavior.
		if next == nil {
			totals.GrandTotal += dayTotal
			totals.Days = append(totals.Days, models.DailyTotal{Date: item.Day, Seconds: dayTotal})
			break
		}

		if item.Day != anchor.Day {
			anchor = item
			dayTotal = 0
		}

		if next.Day == anchor.Day {
			gap := next.Timestamp - item.Timestamp

			if gap > cfg.IdleThreshold {
				// Idle break: the gap itself is discarded.
				dayTotal += cfg.BorrowedTime
			} else {
				candidate := dayTotal + gap
				if candidate < dayTotal+cfg.IdleThreshold/60 {
					// Near-duplicate events: the extension is below the
					// commit floor, so nothing is committed this iteration.
					continue
				}
				dayTotal = candidate
			}
		} else {
			// Last event of the day.
			dayTotal += cfg.BorrowedTime
		}

		if dayTotal > 0 && next.Day != anchor.Day {
			totals.GrandTotal += dayTotal
			totals.Days = append(totals.Days, models.DailyTotal{Date: item.Day, Seconds: dayTotal})
		}
	}

	return totals, nil
}
