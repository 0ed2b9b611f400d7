package domain

import (
	"math"
	"time"
)

// Day truncates t to midnight UTC of its UTC calendar date. Plan, snapshot
// and ledger rows are keyed by this value.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// LocalDay returns the learner's calendar date for now, expressed as a UTC day key.
func LocalDay(now time.Time, tz *time.Location) time.Time {
	local := now.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseTimezone parses a timezone string, returning UTC as fallback.
func ParseTimezone(tz string) *time.Location {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DaysBetween returns the whole number of days from a to b (negative if b is before a).
func DaysBetween(a, b time.Time) int {
	return int(math.Round(Day(b).Sub(Day(a)).Hours() / 24))
}

// IsWeekend reports whether the day falls on Saturday or Sunday.
func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Round2 rounds to two decimal places. Ledger balances and tunable
// parameters are rounded at every write.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp constrains v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
