package parse

import (
	"strings"
	"time"
)

// Decoding of PTV Timetable API v3 responses, and of the stops CSV
// file listing what a board should display.

// Timestamps are ISO-8601 in UTC, e.g. "2025-02-21T12:34:00Z". Some
// older responses omit the zone designator, in which case UTC is
// assumed.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Parses an upstream timestamp. Returns false for empty or malformed
// input.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
