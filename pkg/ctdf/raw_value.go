package ctdf

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/travigo/fleettrack/pkg/geo"
)

// RawValue holds a feed field verbatim as text. Strings, numbers and booleans are
// all accepted; null, objects and arrays decode to blank instead of failing the
// whole record.
type RawValue string

func (r *RawValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*r = ""
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			*r = ""
			return nil
		}
		*r = RawValue(s)
	case trimmed[0] == '{' || trimmed[0] == '[':
		*r = ""
	default:
		*r = RawValue(trimmed)
	}

	return nil
}

func (r *RawValue) UnmarshalCSV(value string) error {
	*r = RawValue(value)
	return nil
}

func (r RawValue) String() string {
	return strings.TrimSpace(string(r))
}

func (r RawValue) IsBlank() bool {
	return r.String() == ""
}

// Float normalizes the value as a decimal number
func (r RawValue) Float() (float64, bool) {
	return geo.Normalize(string(r))
}

// FloatOr returns the normalized number or fallback
func (r RawValue) FloatOr(fallback float64) float64 {
	if value, ok := r.Float(); ok {
		return value
	}
	return fallback
}
