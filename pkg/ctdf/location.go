package ctdf

import (
	"errors"

	"github.com/travigo/fleettrack/pkg/geo"
)

// Location is a GeoJSON point as stored by mongo, coordinates are [longitude, latitude]
type Location struct {
	Type        string    `json:"-" bson:"type" groups:"basic"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates" groups:"basic"`
}

func NewLocation(point geo.Point) Location {
	return Location{
		Type:        "Point",
		Coordinates: []float64{point.Longitude, point.Latitude},
	}
}

func (l Location) Point() (geo.Point, error) {
	if len(l.Coordinates) != 2 {
		return geo.Point{}, errors.New("location does not have exactly two coordinates")
	}

	return geo.NewPoint(l.Coordinates[1], l.Coordinates[0])
}
