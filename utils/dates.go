// utils/dates.go
package utils

import "time"

// BeginningOfDay truncates t to midnight in t's own location.
func BeginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts whole calendar days from start to end, negative when
// end precedes start. Partial days do not count: 23:59 to 00:01 the next
// morning is one day.
func DaysBetween(start, end time.Time) int {
	return int(BeginningOfDay(end).Sub(BeginningOfDay(start)).Hours() / 24)
}
