package schedule

import "time"

// DayOf returns UTC midnight of t's UTC calendar day. Every schedule day is
// stored and compared in this form, so a row already at UTC midnight maps to
// itself whatever zone the reader runs in.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey formats t's UTC calendar day as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return DayOf(t).Format("2006-01-02")
}
