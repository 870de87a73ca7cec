package utils

import "time"

// DateLayout is the calendar-day format used for operations and journal rows
const DateLayout = "2006-01-02"

// Day formats t as a UTC calendar day
func Day(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
