package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/ctdf"
	"google.golang.org/protobuf/proto"
)

// GTFSRTSource reads live vehicles from a GTFS-realtime VehiclePositions feed
type GTFSRTSource struct {
	URL       string
	Client    *http.Client
	UserAgent string
}

func NewGTFSRTSource(feedURL string) *GTFSRTSource {
	return &GTFSRTSource{
		URL:       feedURL,
		Client:    &http.Client{},
		UserAgent: defaultUserAgent,
	}
}

func (g *GTFSRTSource) FetchLive(ctx context.Context) ([]ctdf.VehicleSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.UserAgent)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: g.URL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return ParseVehiclePositions(body)
}

// ParseVehiclePositions converts the vehicle entities of a GTFS-RT feed message
// into snapshots. Trip updates and alerts are ignored.
func ParseVehiclePositions(body []byte) ([]ctdf.VehicleSnapshot, error) {
	snapshots := []ctdf.VehicleSnapshot{}
	if len(body) == 0 {
		return snapshots, nil
	}

	feed := gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing GTFS-RT protobuf: %w", err)
	}

	skipped := 0

	for _, entity := range feed.Entity {
		vehiclePosition := entity.GetVehicle()
		if vehiclePosition == nil {
			continue
		}

		deviceID := vehiclePosition.GetVehicle().GetId()
		if deviceID == "" {
			deviceID = entity.GetId()
		}
		if deviceID == "" {
			skipped++
			continue
		}

		snapshot := ctdf.VehicleSnapshot{
			DeviceID:   ctdf.RawValue(deviceID),
			LiveStatus: ctdf.RawValue(gtfsStatus(vehiclePosition)),
			Ignition:   ctdf.RawValue(ctdf.IgnitionOn),
		}

		if position := vehiclePosition.GetPosition(); position != nil {
			snapshot.Latitude = formatFloat32(position.GetLatitude())
			snapshot.Longitude = formatFloat32(position.GetLongitude())

			if position.Speed != nil {
				// GTFS-RT speeds are metres per second, the rest of the system uses km/h
				snapshot.Speed = ctdf.RawValue(strconv.FormatFloat(float64(position.GetSpeed())*3.6, 'f', 2, 64))
			}
			if position.Bearing != nil {
				snapshot.Course = formatFloat32(position.GetBearing())
			}
		}

		if vehiclePosition.Timestamp != nil {
			snapshot.Timestamp = ctdf.RawValue(time.Unix(int64(vehiclePosition.GetTimestamp()), 0).UTC().Format(time.RFC3339))
		}

		snapshots = append(snapshots, snapshot)
	}

	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Msg("GTFS-RT vehicles without an identifier")
	}

	return snapshots, nil
}

func gtfsStatus(vehiclePosition *gtfs.VehiclePosition) ctdf.VehicleStatus {
	switch vehiclePosition.GetCurrentStatus() {
	case gtfs.VehiclePosition_STOPPED_AT:
		return ctdf.VehicleStatusIdle
	case gtfs.VehiclePosition_IN_TRANSIT_TO, gtfs.VehiclePosition_INCOMING_AT:
		return ctdf.VehicleStatusRunning
	default:
		return ctdf.VehicleStatusUnknown
	}
}

func formatFloat32(value float32) ctdf.RawValue {
	return ctdf.RawValue(strconv.FormatFloat(float64(value), 'f', -1, 32))
}
