package repository

import (
	"fmt"
	"time"
)

// timeFormats are the layouts accepted for stored dates: the canonical date
// format, SQLite's datetime() output, and RFC3339.
var timeFormats = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// ParseTime parses a stored date or datetime string.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

// DateString formats a time as the canonical stored date format.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}
