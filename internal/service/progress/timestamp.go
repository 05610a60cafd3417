package progress

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned when a timestamp matches none of the accepted layouts.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// timestampLayouts lists the accepted ISO-8601 forms, most specific first.
// Layouts without a zone are read as UTC.
//
//nolint:gochecknoglobals // Read-only lookup table.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp parses an ISO-8601 timestamp such as "2026-10-17T08:00:00.000Z".
func ParseTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}
