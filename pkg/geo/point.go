package geo

import (
	"fmt"
	"math"
)

// Point is a validated WGS84 position. Construct it through NewPoint or ToPoint
// so that both coordinates are finite and inside their ranges.
type Point struct {
	Latitude  float64 `json:"latitude" bson:"latitude" groups:"basic,detailed"`
	Longitude float64 `json:"longitude" bson:"longitude" groups:"basic,detailed"`
}

func NewPoint(latitude float64, longitude float64) (Point, error) {
	if !ValidLatitude(latitude) {
		return Point{}, fmt.Errorf("latitude %v out of range", latitude)
	}
	if !ValidLongitude(longitude) {
		return Point{}, fmt.Errorf("longitude %v out of range", longitude)
	}

	return Point{Latitude: latitude, Longitude: longitude}, nil
}

func ValidLatitude(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -90 && v <= 90
}

func ValidLongitude(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -180 && v <= 180
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}
