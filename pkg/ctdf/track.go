package ctdf

import (
	"time"

	"github.com/travigo/fleettrack/pkg/geo"
	"github.com/travigo/fleettrack/pkg/util"
)

// TrackRecord is one historical point returned by a playback feed
type TrackRecord struct {
	DeviceID  RawValue `json:"deviceId,omitempty" csv:"deviceId"`
	Latitude  RawValue `json:"latitude" csv:"latitude"`
	Longitude RawValue `json:"longitude" csv:"longitude"`
	Speed     RawValue `json:"speed" csv:"speed"`
	Timestamp RawValue `json:"timestamp" csv:"timestamp"`
}

func (r TrackRecord) Position() (geo.Point, bool) {
	return geo.ToPoint(string(r.Latitude), string(r.Longitude))
}

func (r TrackRecord) Time() (time.Time, bool) {
	return util.ParseTimestamp(r.Timestamp.String())
}

// PlaybackPoint is a position on an interpolated playback path. SourceIndex points
// back at the raw record the point was derived from.
type PlaybackPoint struct {
	Position    geo.Point `json:"position" groups:"basic,detailed"`
	Speed       float64   `json:"speed" groups:"basic,detailed"`
	Timestamp   string    `json:"timestamp" groups:"basic,detailed"`
	SourceIndex int       `json:"sourceIndex" groups:"detailed"`
}
