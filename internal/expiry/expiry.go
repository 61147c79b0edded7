// Package expiry computes promotional expiration instants.
//
// Expirations are fixed at the last instant of the final calendar day so that
// "N days" always includes the whole last day no matter what time of day the
// purchase happened.
package expiry

import (
	"math"
	"time"
)

// EndOfDayAfter returns from's calendar date plus days, at 23:59:59.999 in
// from's location. days must already be normalized (>= 1).
func EndOfDayAfter(from time.Time, days int) time.Time {
	d := from.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999*int(time.Millisecond), from.Location())
}

// NormalizeDays coerces a caller-supplied duration to a whole day count,
// rounding fractions and flooring at one day.
func NormalizeDays(raw float64) int {
	n := int(math.Round(raw))
	if n < 1 {
		return 1
	}
	return n
}
