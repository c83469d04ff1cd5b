package playback

import (
	"math"

	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/geo"
)

// MaxSegmentSteps caps how many points a single gap between two raw points can
// be densified into
const MaxSegmentSteps = 2000

// FilterTrack keeps the records belonging to the device inside the window, in
// feed order. Records without a device id are assumed to belong to the device
// that was asked for. Records without a usable position are dropped, and when the
// window has a bound so are records whose timestamp cannot be read.
func FilterTrack(records []ctdf.TrackRecord, deviceID string, window ctdf.TimeWindow) []ctdf.PlaybackPoint {
	points := []ctdf.PlaybackPoint{}

	for i, record := range records {
		if !record.DeviceID.IsBlank() && record.DeviceID.String() != deviceID {
			continue
		}

		if !window.Unbounded() {
			timestamp, ok := record.Time()
			if !ok || !window.Contains(timestamp) {
				continue
			}
		}

		position, ok := record.Position()
		if !ok {
			continue
		}

		points = append(points, ctdf.PlaybackPoint{
			Position:    position,
			Speed:       record.Speed.FloatOr(0),
			Timestamp:   record.Timestamp.String(),
			SourceIndex: i,
		})
	}

	return points
}

// BuildPath densifies the points so that consecutive path points are roughly
// interval metres apart. Interpolation is planar on latitude and longitude, so
// it only holds up over short gaps. Every raw point appears in the path unchanged.
func BuildPath(points []ctdf.PlaybackPoint, interval float64) []ctdf.PlaybackPoint {
	if len(points) == 0 {
		return []ctdf.PlaybackPoint{}
	}
	if interval <= 0 {
		interval = DefaultIntervalMeters
	}

	path := make([]ctdf.PlaybackPoint, 0, len(points))

	for i := 0; i < len(points)-1; i++ {
		from := points[i]
		to := points[i+1]

		steps := int(math.Floor(geo.Distance(from.Position, to.Position) / interval))
		steps = max(1, min(steps, MaxSegmentSteps))

		// The segment end is emitted as the start of the next segment, or as the final point
		for j := 0; j < steps; j++ {
			frac := float64(j) / float64(steps)

			point := from
			point.Position = geo.Point{
				Latitude:  from.Position.Latitude + (to.Position.Latitude-from.Position.Latitude)*frac,
				Longitude: from.Position.Longitude + (to.Position.Longitude-from.Position.Longitude)*frac,
			}

			path = append(path, point)
		}
	}

	path = append(path, points[len(points)-1])

	return path
}

// PathDistance is the length in metres of the polyline through the points
func PathDistance(points []ctdf.PlaybackPoint) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += geo.Distance(points[i-1].Position, points[i].Position)
	}
	return total
}
