package tools

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned when an order's created_at cannot be parsed.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Layouts with an explicit offset. Fractional seconds are accepted by time.Parse
// after the seconds field even when the layout omits them.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
}

// Layouts without an offset; these are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 timestamp and returns it in UTC.
// It accepts a "Z" or numeric offset, a space instead of "T", optional
// fractional seconds, minute precision, and naive values (assumed UTC).
func ParseTimestamp(s string) (time.Time, error) {
	ts := strings.TrimSpace(s)
	if len(ts) > 10 && ts[10] == ' ' {
		ts = ts[:10] + "T" + ts[11:]
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, ts, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
