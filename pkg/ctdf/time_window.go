package ctdf

import (
	"fmt"
	"strings"
	"time"

	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/fleettrack/pkg/util"
)

// TimeWindow bounds a playback query. A nil bound is unbounded on that side.
type TimeWindow struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// ParseTimeWindow builds a window from the raw query values. When to is blank and
// an ISO8601 duration such as PT2H is given, the end is derived from the start.
// A date-only to runs until the last instant of that day.
func ParseTimeWindow(from string, to string, length string) (TimeWindow, error) {
	var window TimeWindow

	if strings.TrimSpace(from) != "" {
		parsed, ok := util.ParseTimestamp(from)
		if !ok {
			return TimeWindow{}, fmt.Errorf("invalid from time %q", from)
		}
		window.From = &parsed
	}

	if strings.TrimSpace(to) != "" {
		parsed, ok := util.ParseTimestamp(to)
		if !ok {
			return TimeWindow{}, fmt.Errorf("invalid to time %q", to)
		}
		// A bare date as the end bound covers the whole of that day
		if _, err := time.Parse(time.DateOnly, strings.TrimSpace(to)); err == nil {
			parsed = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		window.To = &parsed
	} else if strings.TrimSpace(length) != "" {
		if window.From == nil {
			return TimeWindow{}, fmt.Errorf("duration %q needs a from time", length)
		}

		windowDuration, err := iso8601.ParseISO8601(length)
		if err != nil {
			return TimeWindow{}, fmt.Errorf("invalid duration %q: %w", length, err)
		}

		end := windowDuration.Shift(*window.From)
		window.To = &end
	}

	if window.From != nil && window.To != nil && window.To.Before(*window.From) {
		return TimeWindow{}, fmt.Errorf("window ends before it starts")
	}

	return window, nil
}

func (w TimeWindow) Unbounded() bool {
	return w.From == nil && w.To == nil
}

// Contains is inclusive on both ends
func (w TimeWindow) Contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && t.After(*w.To) {
		return false
	}
	return true
}

func (w TimeWindow) String() string {
	format := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}

	return fmt.Sprintf("%s/%s", format(w.From), format(w.To))
}
