package util

import (
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp shapes tracking feeds send: ISO8601 with or
// without a zone, a plain date, or unix seconds/milliseconds.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}

	if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil {
		// Anything past 1e11 seconds is far in the future, so treat it as milliseconds
		if epoch > 1e11 || epoch < -1e11 {
			return time.UnixMilli(epoch).UTC(), true
		}
		return time.Unix(epoch, 0).UTC(), true
	}

	return time.Time{}, false
}
