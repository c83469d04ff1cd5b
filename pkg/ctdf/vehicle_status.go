package ctdf

import "strings"

type VehicleStatus string

const (
	VehicleStatusRunning VehicleStatus = "RUNNING"
	VehicleStatusIdle    VehicleStatus = "IDLE"
	VehicleStatusParked  VehicleStatus = "PARKED"
	VehicleStatusOffline VehicleStatus = "OFFLINE"
	VehicleStatusUnknown VehicleStatus = "UNKNOWN"
)

// ClassifyStatus maps a free text live status onto the closed set of statuses.
// Anything unrecognised is VehicleStatusUnknown.
func ClassifyStatus(raw string) VehicleStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "RUNNING", "MOVING":
		return VehicleStatusRunning
	case "IDLE", "IDLING":
		return VehicleStatusIdle
	case "PARKED", "STOPPED":
		return VehicleStatusParked
	case "OFFLINE", "INACTIVE":
		return VehicleStatusOffline
	default:
		return VehicleStatusUnknown
	}
}

type IgnitionState string

const (
	IgnitionOn  IgnitionState = "ON"
	IgnitionOff IgnitionState = "OFF"
)

func ClassifyIgnition(raw string) IgnitionState {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ON", "1", "TRUE", "YES":
		return IgnitionOn
	default:
		return IgnitionOff
	}
}
