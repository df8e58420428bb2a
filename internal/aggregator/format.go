package aggregator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatSeconds renders a duration in seconds as HH:MM:SS.
//
// Hours are zero-padded to at least two digits and there is no day rollover:
// a total above 24 logical hours keeps growing the hours field. The hours
// field stays zero for totals up to and including exactly one hour; only
// totals strictly above 3600s are split into hours. A fractional remainder,
// if the input ever carries one, is appended verbatim after the seconds.
func FormatSeconds(seconds float64) string {
	whole := int64(seconds)
	frac := seconds - math.Floor(seconds)

	var hours int64
	if seconds > 3600 {
		hours = int64(seconds / 3600)
	}
	rem := whole % 3600

	out := fmt.Sprintf("%02d:%02d:%02d", hours, rem/60, rem%60)

	if frac > 0 {
		out += strings.TrimPrefix(strconv.FormatFloat(frac, 'f', -1, 64), "0.")
	}
	return out
}
