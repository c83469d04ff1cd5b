package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Orb converts the point into orb's [lon, lat] ordering
func (p Point) Orb() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// Bearing returns the initial great-circle azimuth from one point to another in
// degrees clockwise from north, within [0,360). Identical points give 0.
func Bearing(from Point, to Point) float64 {
	if from == to {
		return 0
	}

	return NormaliseBearing(orbgeo.Bearing(from.Orb(), to.Orb()))
}

// NormaliseBearing wraps any finite angle into [0,360).
func NormaliseBearing(degrees float64) float64 {
	normalised := math.Mod(math.Mod(degrees, 360)+360, 360)
	// Mod of a tiny negative value can round up to exactly 360
	if normalised >= 360 {
		return 0
	}
	return normalised
}

// Distance is the haversine distance between two points in metres, using orb's
// WGS84 equatorial earth radius.
func Distance(a Point, b Point) float64 {
	distance := orbgeo.DistanceHaversine(a.Orb(), b.Orb())
	// Rounding can push the haversine term above 1 for antipodal points
	if math.IsNaN(distance) {
		return math.Pi * orb.EarthRadius
	}
	return distance
}

// BearingDifference calculates the smallest angle between two bearings
func BearingDifference(b1, b2 float64) float64 {
	diff := math.Abs(NormaliseBearing(b1) - NormaliseBearing(b2))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}
