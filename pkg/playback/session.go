package playback

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/datasource"
)

// Session is the playback of one device over one window. Reloading rebuilds the
// path from scratch and rewinds the controller.
type Session struct {
	DeviceID string
	Window   ctdf.TimeWindow

	Records []ctdf.TrackRecord
	Points  []ctdf.PlaybackPoint
	Path    []ctdf.PlaybackPoint

	Controller *Controller

	config Config
}

func NewSession(deviceID string, config Config, sink FrameSink) *Session {
	return &Session{
		DeviceID:   deviceID,
		Controller: NewController(config.Tick, config.Speeds, sink),
		config:     config,
	}
}

// Load fetches the track for the window and rebuilds the path. On a fetch
// failure or timeout the previous path is kept.
func (s *Session) Load(ctx context.Context, source datasource.TrackSource, window ctdf.TimeWindow) error {
	if s.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.FetchTimeout)
		defer cancel()
	}

	records, err := source.FetchTrack(ctx, s.DeviceID, window)
	if err != nil {
		return fmt.Errorf("fetching track for %s: %w", s.DeviceID, err)
	}

	s.LoadRecords(records, window)

	return nil
}

func (s *Session) LoadRecords(records []ctdf.TrackRecord, window ctdf.TimeWindow) {
	s.Window = window
	s.Records = records
	s.Points = FilterTrack(records, s.DeviceID, window)
	s.Path = BuildPath(s.Points, s.config.IntervalMeters)

	log.Debug().
		Str("device", s.DeviceID).
		Str("window", window.String()).
		Int("records", len(records)).
		Int("points", len(s.Points)).
		Int("path", len(s.Path)).
		Msg("Built playback path")

	s.Controller.Load(s.Path)
}

// SourceRecord returns the raw record a path point was built from
func (s *Session) SourceRecord(point ctdf.PlaybackPoint) (ctdf.TrackRecord, bool) {
	if point.SourceIndex < 0 || point.SourceIndex >= len(s.Records) {
		return ctdf.TrackRecord{}, false
	}

	return s.Records[point.SourceIndex], true
}
