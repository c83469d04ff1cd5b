package datasource

import (
	"context"
	"errors"

	"github.com/travigo/fleettrack/pkg/ctdf"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

// LiveSource returns the current snapshot of every live vehicle. An empty slice
// with a nil error means nothing is live.
type LiveSource interface {
	FetchLive(ctx context.Context) ([]ctdf.VehicleSnapshot, error)
}

// TrackSource returns the historical points of one device ordered by time
type TrackSource interface {
	FetchTrack(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error)
}

// LiveSourceFunc adapts a function to LiveSource
type LiveSourceFunc func(ctx context.Context) ([]ctdf.VehicleSnapshot, error)

func (f LiveSourceFunc) FetchLive(ctx context.Context) ([]ctdf.VehicleSnapshot, error) {
	return f(ctx)
}

type TrackSourceFunc func(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error)

func (f TrackSourceFunc) FetchTrack(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error) {
	return f(ctx, deviceID, window)
}
