package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/fleettrack/pkg/ctdf"
	"go.mongodb.org/mongo-driver/bson"
	"google.golang.org/protobuf/proto"
)

func TestHTTPClientFetchLive(t *testing.T) {
	t.Run("Decodes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/vehicles/live", r.URL.Path)
			w.Write([]byte(`[{"deviceId": "TRK-1", "latitude": "51.5", "longitude": "-0.12", "speed": null}]`))
		}))
		defer server.Close()

		snapshots, err := NewHTTPClient(server.URL).FetchLive(context.Background())
		require.NoError(t, err)
		require.Len(t, snapshots, 1)
		assert.Equal(t, "TRK-1", snapshots[0].Identifier())
	})

	t.Run("EmptyBody", func(t *testing.T) {
		for _, body := range []string{"", "null", "[]", "  \n"} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))

			snapshots, err := NewHTTPClient(server.URL).FetchLive(context.Background())
			require.NoError(t, err, body)
			assert.NotNil(t, snapshots)
			assert.Empty(t, snapshots)

			server.Close()
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := NewHTTPClient(server.URL).FetchLive(context.Background())
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("Malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"oops"`))
		}))
		defer server.Close()

		_, err := NewHTTPClient(server.URL).FetchLive(context.Background())
		assert.Error(t, err)
	})
}

func TestHTTPClientFetchTrack(t *testing.T) {
	t.Run("RetriesServerErrors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/vehicles/TRK-1/track", r.URL.Path)
			assert.Equal(t, "2024-03-01T10:00:00Z", r.URL.Query().Get("from"))
			assert.Equal(t, "", r.URL.Query().Get("to"))

			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`[{"latitude": 1, "longitude": 2, "speed": 3, "timestamp": "2024-03-01T10:00:00Z"}]`))
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL)
		client.RetryInterval = time.Millisecond

		from := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		records, err := client.FetchTrack(context.Background(), "TRK-1", ctdf.TimeWindow{From: &from})
		require.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("StalledBackendHonoursDeadline", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-release:
			}
		}))
		defer server.Close()
		defer close(release)

		client := NewHTTPClient(server.URL)
		client.RetryInterval = time.Millisecond

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		started := time.Now()
		_, err := client.FetchTrack(ctx, "TRK-1", ctdf.TimeWindow{})
		assert.Error(t, err)
		assert.Less(t, time.Since(started), 2*time.Second)
	})

	t.Run("DoesNotRetryClientErrors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewHTTPClient(server.URL)
		client.RetryInterval = time.Millisecond

		_, err := client.FetchTrack(context.Background(), "missing", ctdf.TimeWindow{})

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func buildFeed(t *testing.T) []byte {
	t.Helper()

	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Timestamp:           proto.Uint64(1709288100),
		},
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("entity-1"),
				Vehicle: &gtfs.VehiclePosition{
					Vehicle: &gtfs.VehicleDescriptor{Id: proto.String("BUS-7")},
					Position: &gtfs.Position{
						Latitude:  proto.Float32(51.5),
						Longitude: proto.Float32(-0.125),
						Bearing:   proto.Float32(90),
						Speed:     proto.Float32(10),
					},
					CurrentStatus: gtfs.VehiclePosition_STOPPED_AT.Enum(),
					Timestamp:     proto.Uint64(1709288100),
				},
			},
			{
				Id: proto.String("entity-2"),
				Vehicle: &gtfs.VehiclePosition{
					Position: &gtfs.Position{
						Latitude:  proto.Float32(51.25),
						Longitude: proto.Float32(-0.5),
					},
				},
			},
			{
				Id:         proto.String("trip-update"),
				TripUpdate: &gtfs.TripUpdate{Trip: &gtfs.TripDescriptor{TripId: proto.String("T1")}},
			},
		},
	}

	body, err := proto.Marshal(feed)
	require.NoError(t, err)

	return body
}

func TestParseVehiclePositions(t *testing.T) {
	snapshots, err := ParseVehiclePositions(buildFeed(t))
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	first := snapshots[0]
	assert.Equal(t, "BUS-7", first.Identifier())
	assert.Equal(t, ctdf.VehicleStatusIdle, first.Status())
	assert.Equal(t, 36.0, first.SpeedValue())
	assert.Equal(t, "2024-03-01T10:15:00Z", first.Timestamp.String())

	position, ok := first.Position()
	require.True(t, ok)
	assert.Equal(t, 51.5, position.Latitude)
	assert.Equal(t, -0.125, position.Longitude)

	course, ok := first.CourseHint()
	require.True(t, ok)
	assert.Equal(t, 90.0, course)

	second := snapshots[1]
	assert.Equal(t, "entity-2", second.Identifier())
	assert.Equal(t, ctdf.VehicleStatusRunning, second.Status())
	_, ok = second.CourseHint()
	assert.False(t, ok)

	_, err = ParseVehiclePositions([]byte("definitely not protobuf"))
	assert.Error(t, err)
}

func TestGTFSRTSourceFetchLive(t *testing.T) {
	body := buildFeed(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.Write(body)
	}))
	defer server.Close()

	snapshots, err := NewGTFSRTSource(server.URL).FetchLive(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)
}

func TestCSVTrackSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracks.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"deviceId,latitude,longitude,speed,timestamp\n"+
			"TRK-1,51.50,-0.12,10,2024-03-01T10:00:00Z\n"+
			"TRK-2,40.00,-74.00,5,2024-03-01T10:00:30Z\n"+
			"TRK-1,51.51,-0.12,12,2024-03-01T10:01:00Z\n"+
			"TRK-1,51.52,-0.12,14,2024-03-01T11:30:00Z\n"+
			"TRK-1,51.53,-0.12,14,not a time\n",
	), 0o644))

	source := &CSVTrackSource{Path: path}

	records, err := source.FetchTrack(context.Background(), "TRK-1", ctdf.TimeWindow{})
	require.NoError(t, err)
	assert.Len(t, records, 4)

	window, err := ctdf.ParseTimeWindow("2024-03-01T10:00:00Z", "", "PT1H")
	require.NoError(t, err)

	records, err = source.FetchTrack(context.Background(), "TRK-1", window)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "51.51", records[1].Latitude.String())
}

func TestCachedTrackSource(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	var calls atomic.Int32
	upstream := TrackSourceFunc(func(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error) {
		calls.Add(1)
		return []ctdf.TrackRecord{{DeviceID: ctdf.RawValue(deviceID), Latitude: "1", Longitude: "2", Timestamp: "2024-03-01T10:00:00Z"}}, nil
	})

	cached := NewCachedTrackSource(upstream, client, time.Hour)

	from := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	closed := ctdf.TimeWindow{From: &from, To: &to}

	for i := 0; i < 3; i++ {
		records, err := cached.FetchTrack(context.Background(), "TRK-1", closed)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "TRK-1", records[0].DeviceID.String())
	}
	assert.Equal(t, int32(1), calls.Load())

	open := ctdf.TimeWindow{From: &from}
	_, err := cached.FetchTrack(context.Background(), "TRK-1", open)
	require.NoError(t, err)
	_, err = cached.FetchTrack(context.Background(), "TRK-1", open)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTrackQuery(t *testing.T) {
	assert.Equal(t, bson.M{"deviceid": "TRK-1"}, TrackQuery("TRK-1", ctdf.TimeWindow{}))

	from := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	query := TrackQuery("TRK-1", ctdf.TimeWindow{From: &from})
	assert.Equal(t, bson.M{"$gte": from}, query["timestamp"])
}

func TestVehicleLocationTrackRecord(t *testing.T) {
	location := VehicleLocation{
		DeviceID:  "TRK-1",
		Location:  ctdf.Location{Type: "Point", Coordinates: []float64{-0.12, 51.5}},
		Speed:     12.5,
		Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	record, ok := location.TrackRecord()
	require.True(t, ok)
	assert.Equal(t, "51.5", record.Latitude.String())
	assert.Equal(t, "-0.12", record.Longitude.String())
	assert.Equal(t, "12.5", record.Speed.String())
	assert.Equal(t, "2024-03-01T10:00:00Z", record.Timestamp.String())

	_, ok = VehicleLocation{Location: ctdf.Location{Coordinates: []float64{1}}}.TrackRecord()
	assert.False(t, ok)
}

func TestNewTrackSource(t *testing.T) {
	source, err := NewTrackSource(TrackSourceHTTP, "http://tracking.internal/api")
	require.NoError(t, err)
	assert.IsType(t, &HTTPClient{}, source)

	source, err = NewTrackSource(TrackSourceCSV, "testdata/track.csv")
	require.NoError(t, err)
	assert.Equal(t, &CSVTrackSource{Path: "testdata/track.csv"}, source)

	_, err = NewTrackSource(TrackSourceHTTP, "")
	assert.Error(t, err)

	_, err = NewTrackSource("ftp", "somewhere")
	assert.ErrorContains(t, err, "unknown track source")

	// Without redis the source is used as is
	assert.Same(t, source, WithCache(source, nil))
}
