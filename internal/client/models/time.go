package models

import "time"

// TimeLayout is the storage format for all timestamps, locally and on the
// wire. Timestamps are always UTC.
const TimeLayout = time.RFC3339Nano

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp. Empty or malformed values yield the
// zero time; rows coming from the remote store are treated as best-effort.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
