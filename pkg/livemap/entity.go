package livemap

import (
	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/geo"
	"github.com/travigo/fleettrack/pkg/util"
)

// TrackedEntity is a vehicle currently drawn on the map
type TrackedEntity struct {
	DeviceID string             `json:"deviceId" groups:"basic,detailed"`
	Position geo.Point          `json:"position" groups:"basic,detailed"`
	Bearing  float64            `json:"bearing" groups:"detailed"`
	Variant  ctdf.StatusVariant `json:"variant" groups:"basic,detailed"`
	Icon     ctdf.Icon          `json:"icon" groups:"basic,detailed"`

	Speed    float64              `json:"speed" groups:"basic,detailed"`
	Ignition ctdf.IgnitionState   `json:"ignition" groups:"detailed"`
	Snapshot ctdf.VehicleSnapshot `json:"snapshot" groups:"detailed"`
}

// DisplayLatitude and DisplayLongitude are what operators see in tables
func (e TrackedEntity) DisplayLatitude() string {
	return util.FormatCoordinate(e.Position.Latitude)
}

func (e TrackedEntity) DisplayLongitude() string {
	return util.FormatCoordinate(e.Position.Longitude)
}

func (e *TrackedEntity) apply(snapshot ctdf.VehicleSnapshot, position geo.Point, variant ctdf.StatusVariant) {
	e.Position = position
	e.Variant = variant
	e.Icon = variant.Icon()
	e.Speed = snapshot.SpeedValue()
	e.Ignition = snapshot.IgnitionState()
	e.Snapshot = snapshot
}
