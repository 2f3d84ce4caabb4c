package types

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for reservation dates.
const DateLayout = "2006-01-02"

// NormalizeDate truncates a timestamp to midnight UTC. Every date column
// write and comparison goes through this so that Postgres date columns and
// the sqlite test databases agree on equality.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return NormalizeDate(t), nil
}

// FormatDate renders a date in the wire format.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysUntil returns the whole-day distance from `from` to `to`, ignoring
// the time-of-day components of both.
func DaysUntil(from, to time.Time) int {
	a := NormalizeDate(from)
	b := NormalizeDate(to)
	return int(b.Sub(a).Hours() / 24)
}
