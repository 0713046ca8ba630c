package calendar

import (
	"strings"
	"time"
)

// icsLayout is the compact UTC form used for every DATE-TIME in the feed.
const icsLayout = "20060102T150405Z"

// fallbackLayout is the offset-less form, tried last and always read as UTC.
const fallbackLayout = "2006-01-02T15:04:05"

// isoLayouts are tried in order. time.Parse accepts a fractional second after the
// seconds field even when the layout does not mention it.
var isoLayouts = []string{
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04-07:00",
	"2006-01-02T15:04-0700",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDateTime reads an ISO-8601 style timestamp and returns it as a UTC instant.
// A trailing Z means UTC and values without an offset are taken to be UTC already.
// The boolean is false for empty or unparseable input.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	t, err := time.ParseInLocation(fallbackLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// FormatDateTime renders t as YYYYMMDDTHHMMSSZ in UTC.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(icsLayout)
}
