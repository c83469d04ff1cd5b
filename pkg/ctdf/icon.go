package ctdf

import "github.com/travigo/fleettrack/pkg/geo"

type Icon struct {
	Name     string  `json:"name" groups:"basic,detailed"`
	Rotation float64 `json:"rotation" groups:"basic,detailed"`
	Oriented bool    `json:"oriented" groups:"detailed"`
}

// StatusVariant is the display state of a tracked vehicle. Bearing only has a
// meaning when Status is VehicleStatusRunning.
type StatusVariant struct {
	Status  VehicleStatus `json:"status" groups:"basic,detailed"`
	Bearing float64       `json:"bearing" groups:"detailed"`
}

func Running(bearing float64) StatusVariant {
	return StatusVariant{Status: VehicleStatusRunning, Bearing: geo.NormaliseBearing(bearing)}
}

func Static(status VehicleStatus) StatusVariant {
	return StatusVariant{Status: status}
}

// Icon selects the marker icon for the variant. Only running vehicles get an
// oriented icon; unknown statuses fall back to the default marker.
func (v StatusVariant) Icon() Icon {
	switch v.Status {
	case VehicleStatusRunning:
		return Icon{Name: "vehicle-running", Rotation: geo.NormaliseBearing(v.Bearing), Oriented: true}
	case VehicleStatusIdle:
		return Icon{Name: "vehicle-idle"}
	case VehicleStatusParked:
		return Icon{Name: "vehicle-parked"}
	case VehicleStatusOffline:
		return Icon{Name: "vehicle-offline"}
	default:
		return Icon{Name: "vehicle-default"}
	}
}

// PlaybackIcon is the oriented marker used while replaying a path
func PlaybackIcon(heading float64) Icon {
	return Icon{Name: "vehicle-playback", Rotation: geo.NormaliseBearing(heading), Oriented: true}
}
