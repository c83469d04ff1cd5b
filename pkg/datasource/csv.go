package datasource

import (
	"context"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/travigo/fleettrack/pkg/ctdf"
)

// CSVTrackSource replays tracks exported to a CSV file with the columns
// deviceId,latitude,longitude,speed,timestamp
type CSVTrackSource struct {
	Path string
}

func (c *CSVTrackSource) FetchTrack(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error) {
	file, err := os.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []ctdf.TrackRecord
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.Path, err)
	}

	records := []ctdf.TrackRecord{}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if row.DeviceID.String() != deviceID {
			continue
		}

		timestamp, ok := row.Time()
		if !window.Unbounded() && (!ok || !window.Contains(timestamp)) {
			continue
		}

		records = append(records, row)
	}

	return records, nil
}
