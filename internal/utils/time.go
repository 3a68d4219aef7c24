package utils

import "time"

// NormalizeDate truncates a timestamp to midnight UTC. Every stored ticket
// date and every date comparison in the service goes through this, so a
// ticket ordered from a datetime-valued form field still matches "today".
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day, midnight-normalized.
func Today() time.Time {
	return NormalizeDate(time.Now())
}
