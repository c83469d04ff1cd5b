package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw      string
		expected float64
		ok       bool
	}{
		{"51.5074", 51.5074, true},
		{"-0.1278", -0.1278, true},
		{"51,5074", 51.5074, true},
		{" lat: 12.5 N", 12.5, true},
		{"42", 42, true},
		{"N/A", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"--", 0, false},
		{"1e999", 1, true},
	}

	for _, test := range tests {
		t.Run(test.raw, func(t *testing.T) {
			value, ok := Normalize(test.raw)
			assert.Equal(t, test.ok, ok)
			if test.ok {
				assert.InDelta(t, test.expected, value, 1e-9)
			}
		})
	}
}

func TestNormalizeNeverReturnsNonFinite(t *testing.T) {
	inputs := []string{
		"NaN", "Inf", "-Inf", "1e400",
		"9999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999999",
		"\x00\xff", "🚚", "12.", ".5", "-.5",
	}

	for _, input := range inputs {
		value, ok := Normalize(input)
		if ok {
			assert.False(t, math.IsNaN(value) || math.IsInf(value, 0), input)
		}
	}
}

func TestToPoint(t *testing.T) {
	point, ok := ToPoint("51.5074", "-0.1278")
	require.True(t, ok)
	assert.Equal(t, Point{Latitude: 51.5074, Longitude: -0.1278}, point)

	t.Run("LatitudeOutOfRange", func(t *testing.T) {
		_, ok := ToPoint("91", "0")
		assert.False(t, ok)
	})

	t.Run("LongitudeOutOfRange", func(t *testing.T) {
		_, ok := ToPoint("0", "-180.5")
		assert.False(t, ok)
	})

	t.Run("Unparsable", func(t *testing.T) {
		_, ok := ToPoint("", "10")
		assert.False(t, ok)

		_, ok = ToPoint("10", "unknown")
		assert.False(t, ok)
	})

	t.Run("Bounds", func(t *testing.T) {
		_, ok := ToPoint("-90", "180")
		assert.True(t, ok)
	})
}

func TestBearing(t *testing.T) {
	origin := Point{0, 0}

	assert.InDelta(t, 90, Bearing(origin, Point{0, 1}), 1e-9)
	assert.InDelta(t, 0, Bearing(origin, Point{1, 0}), 1e-9)
	assert.InDelta(t, 180, Bearing(origin, Point{-1, 0}), 1e-9)
	assert.InDelta(t, 270, Bearing(origin, Point{0, -1}), 1e-9)
	assert.Equal(t, 0.0, Bearing(Point{51.5, -0.12}, Point{51.5, -0.12}))
}

func TestBearingBounds(t *testing.T) {
	points := []Point{
		{0, 0}, {90, 0}, {-90, 0}, {0, 180}, {0, -180},
		{51.5, -0.12}, {-33.86, 151.2}, {40.7, -74}, {89.9, 179.9}, {-45, -90},
	}

	for _, a := range points {
		for _, b := range points {
			bearing := Bearing(a, b)
			assert.GreaterOrEqual(t, bearing, 0.0)
			assert.Less(t, bearing, 360.0)
		}
	}
}

func TestNormaliseBearing(t *testing.T) {
	assert.Equal(t, 0.0, NormaliseBearing(360))
	assert.Equal(t, 270.0, NormaliseBearing(-90))
	assert.Equal(t, 10.0, NormaliseBearing(730))
	assert.Less(t, NormaliseBearing(-1e-15), 360.0)
}

func TestBearingDifference(t *testing.T) {
	assert.Equal(t, 20.0, BearingDifference(350, 10))
	assert.Equal(t, 180.0, BearingDifference(0, 180))
	assert.Equal(t, 0.0, BearingDifference(45, 405))
}

func TestDistance(t *testing.T) {
	london := Point{51.5074, -0.1278}
	paris := Point{48.8566, 2.3522}

	distance := Distance(london, paris)
	assert.InDelta(t, 343_500, distance, 1_500)
	assert.Equal(t, distance, Distance(paris, london))
	assert.Equal(t, 0.0, Distance(london, london))

	// One degree of latitude is roughly 111.32km on the WGS84 equatorial radius
	assert.InDelta(t, 111_319, Distance(Point{0, 0}, Point{1, 0}), 10)

	assert.False(t, math.IsNaN(Distance(Point{0, 0}, Point{0, 180})))
	assert.InDelta(t, 20_037_508, Distance(Point{0, 0}, Point{0, 180}), 1)
}

func TestPointOrb(t *testing.T) {
	orbPoint := Point{Latitude: 51.5074, Longitude: -0.1278}.Orb()
	assert.Equal(t, -0.1278, orbPoint.Lon())
	assert.Equal(t, 51.5074, orbPoint.Lat())
}

func TestNearest(t *testing.T) {
	reference := Point{0, 0}
	metresNorth := func(m float64) *Point {
		return &Point{Latitude: m / 111_319.49, Longitude: 0}
	}

	candidates := []Candidate{
		{ID: "hundred", Position: metresNorth(100)},
		{ID: "two-hundred", Position: metresNorth(200)},
		{ID: "fifty", Position: metresNorth(50)},
	}

	match, ok := Nearest(reference, candidates)
	require.True(t, ok)
	assert.Equal(t, "fifty", match.ID)
	assert.Equal(t, 2, match.Index)
	assert.InDelta(t, 50, match.Distance, 0.5)

	t.Run("SkipsUnresolved", func(t *testing.T) {
		match, ok := Nearest(reference, []Candidate{
			{ID: "unknown"},
			{ID: "far", Position: metresNorth(500)},
		})
		require.True(t, ok)
		assert.Equal(t, "far", match.ID)
	})

	t.Run("NoneResolvable", func(t *testing.T) {
		_, ok := Nearest(reference, []Candidate{{ID: "a"}, {ID: "b"}})
		assert.False(t, ok)

		_, ok = Nearest(reference, nil)
		assert.False(t, ok)
	})

	t.Run("TieKeepsFirst", func(t *testing.T) {
		match, ok := Nearest(reference, []Candidate{
			{ID: "east", Position: &Point{0, 0.001}},
			{ID: "west", Position: &Point{0, -0.001}},
		})
		require.True(t, ok)
		assert.Equal(t, "east", match.ID)
	})
}
