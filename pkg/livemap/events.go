package livemap

import (
	"time"

	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/geo"
)

type EventType string

const (
	EventTypeEntitySelected EventType = "EntitySelected"
)

// EntitySelected is emitted when an operator picks a vehicle on the map
type EntitySelected struct {
	Type      EventType          `json:"type"`
	Screen    string             `json:"screen"`
	DeviceID  string             `json:"deviceId"`
	Position  geo.Point          `json:"position"`
	Latitude  string             `json:"latitude"`
	Longitude string             `json:"longitude"`
	Status    ctdf.VehicleStatus `json:"status"`
	Speed     float64            `json:"speed"`
	Ignition  ctdf.IgnitionState `json:"ignition"`
	Timestamp string             `json:"timestamp"`
	Address   string             `json:"address"`
	Selected  time.Time          `json:"selected"`
}

// CycleReport sums up what one poll cycle did to the map
type CycleReport struct {
	Screen      string        `json:"screen"`
	Cycle       int           `json:"cycle"`
	Timestamp   time.Time     `json:"timestamp"`
	FetchFailed bool          `json:"fetchFailed"`
	Received    int           `json:"received"`
	Created     int           `json:"created"`
	Updated     int           `json:"updated"`
	Removed     int           `json:"removed"`
	Skipped     int           `json:"skipped"`
	Tracked     int           `json:"tracked"`
	Duration    time.Duration `json:"duration"`
}
