package utils

import "time"

// DayWindow returns the UTC half-open interval [start, end) covering the
// calendar day that contains t in the given location. The digest
// aggregator uses this to select a user's local-timezone day of entries.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// DayKey returns the yyyy-mm-dd key for the calendar day containing t in
// the given location
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
