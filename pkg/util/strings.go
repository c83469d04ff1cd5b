package util

import (
	"strconv"
	"strings"
)

// ContainsFold reports whether substr is within s, ignoring case. An empty
// substr always matches.
func ContainsFold(s string, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}

// FormatCoordinate renders a coordinate for display with six fixed decimal places
func FormatCoordinate(value float64) string {
	return strconv.FormatFloat(value, 'f', 6, 64)
}
