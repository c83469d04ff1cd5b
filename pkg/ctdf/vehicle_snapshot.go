package ctdf

import (
	"github.com/travigo/fleettrack/pkg/geo"
)

// VehicleSnapshot is one record of the live feed, kept exactly as received
type VehicleSnapshot struct {
	DeviceID   RawValue `json:"deviceId" groups:"basic,detailed"`
	Latitude   RawValue `json:"latitude" groups:"detailed"`
	Longitude  RawValue `json:"longitude" groups:"detailed"`
	Speed      RawValue `json:"speed" groups:"detailed"`
	LiveStatus RawValue `json:"liveStatus" groups:"detailed"`
	Ignition   RawValue `json:"ignition" groups:"detailed"`
	Timestamp  RawValue `json:"timestamp" groups:"detailed"`
	Course     RawValue `json:"course,omitempty" groups:"detailed"`
}

func (s VehicleSnapshot) Identifier() string {
	return s.DeviceID.String()
}

// Valid reports whether the snapshot should be considered at all
func (s VehicleSnapshot) Valid() bool {
	return !s.DeviceID.IsBlank()
}

func (s VehicleSnapshot) Position() (geo.Point, bool) {
	return geo.ToPoint(string(s.Latitude), string(s.Longitude))
}

func (s VehicleSnapshot) Status() VehicleStatus {
	return ClassifyStatus(string(s.LiveStatus))
}

func (s VehicleSnapshot) IgnitionState() IgnitionState {
	return ClassifyIgnition(string(s.Ignition))
}

func (s VehicleSnapshot) SpeedValue() float64 {
	return s.Speed.FloatOr(0)
}

// CourseHint is the bearing the feed reports for the vehicle, if it sent one
func (s VehicleSnapshot) CourseHint() (float64, bool) {
	course, ok := s.Course.Float()
	if !ok {
		return 0, false
	}

	return geo.NormaliseBearing(course), true
}
