package util

import "time"

const dateLayout = "2006-01-02"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// TrailingWindow returns the first and last calendar day of the days-long window
// that ends the day before now, evaluated in loc.
func TrailingWindow(now time.Time, loc *time.Location, days int) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := today.AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(days - 1))
	return start, end
}

// FormatDate renders t as an ISO-8601 calendar date.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses an ISO-8601 calendar date in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(dateLayout, value, loc)
}
