package geo

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var decimalToken = regexp.MustCompile(`-?\d+(\.\d+)?`)

// Normalize pulls the first signed decimal number out of a raw coordinate field.
// Comma decimal separators are accepted. Blank input, input without a number and
// numbers that overflow a float64 all report false.
func Normalize(raw string) (float64, bool) {
	if strings.TrimSpace(raw) == "" {
		return 0, false
	}

	token := decimalToken.FindString(strings.ReplaceAll(raw, ",", "."))
	if token == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}

	return value, true
}

// ToPoint normalizes a latitude/longitude pair. A false result means there is no
// reliable position; callers must never substitute (0,0).
func ToPoint(latitudeRaw string, longitudeRaw string) (Point, bool) {
	latitude, ok := Normalize(latitudeRaw)
	if !ok {
		return Point{}, false
	}
	longitude, ok := Normalize(longitudeRaw)
	if !ok {
		return Point{}, false
	}

	point, err := NewPoint(latitude, longitude)
	if err != nil {
		return Point{}, false
	}

	return point, true
}
