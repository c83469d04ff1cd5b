package playback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/datasource"
	"github.com/travigo/fleettrack/pkg/render"
)

var testConfig = Config{IntervalMeters: 5, Tick: 10 * time.Millisecond, Speeds: DefaultSpeeds}

func staticTrack(records ...ctdf.TrackRecord) datasource.TrackSource {
	return datasource.TrackSourceFunc(func(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error) {
		return records, nil
	})
}

var sixteenMetreTrack = []ctdf.TrackRecord{
	{Latitude: "0", Longitude: "0", Speed: "10", Timestamp: "2024-03-01T10:00:00Z"},
	{Latitude: "0.00014389", Longitude: "0", Speed: "20", Timestamp: "2024-03-01T10:00:05Z"},
}

func TestSessionLoad(t *testing.T) {
	session := NewSession("TRK-1", testConfig, nil)

	require.NoError(t, session.Load(context.Background(), staticTrack(sixteenMetreTrack...), ctdf.TimeWindow{}))
	assert.Len(t, session.Points, 2)
	assert.Len(t, session.Path, 4)
	assert.Equal(t, StateStopped, session.Controller.Status().State)

	record, ok := session.SourceRecord(session.Path[2])
	require.True(t, ok)
	assert.Equal(t, "10", record.Speed.String())

	_, ok = session.SourceRecord(ctdf.PlaybackPoint{SourceIndex: 99})
	assert.False(t, ok)

	t.Run("ReloadResetsController", func(t *testing.T) {
		require.NoError(t, session.Controller.Play())
		session.Controller.Elapse(20 * time.Millisecond)
		require.Equal(t, 2, session.Controller.Status().Index)

		require.NoError(t, session.Load(context.Background(), staticTrack(sixteenMetreTrack[:1]...), ctdf.TimeWindow{}))
		status := session.Controller.Status()
		assert.Equal(t, StateStopped, status.State)
		assert.Equal(t, 0, status.Index)
		assert.Equal(t, 1, status.Length)
	})

	t.Run("EmptyFeed", func(t *testing.T) {
		require.NoError(t, session.Load(context.Background(), staticTrack(), ctdf.TimeWindow{}))
		assert.Empty(t, session.Path)
		assert.ErrorIs(t, session.Controller.Play(), ErrEmptyPath)
		assert.Equal(t, StateStopped, session.Controller.Status().State)
	})

	t.Run("FetchFailureKeepsPath", func(t *testing.T) {
		require.NoError(t, session.Load(context.Background(), staticTrack(sixteenMetreTrack...), ctdf.TimeWindow{}))

		failing := datasource.TrackSourceFunc(func(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error) {
			return nil, errors.New("backend down")
		})
		assert.Error(t, session.Load(context.Background(), failing, ctdf.TimeWindow{}))
		assert.Len(t, session.Path, 4)
	})
}

func TestSessionLoadTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	config := testConfig
	config.FetchTimeout = 50 * time.Millisecond

	session := NewSession("TRK-1", config, nil)
	session.LoadRecords(sixteenMetreTrack, ctdf.TimeWindow{})
	require.Len(t, session.Path, 4)

	client := datasource.NewHTTPClient(server.URL)
	client.RetryInterval = time.Millisecond

	started := time.Now()
	err := session.Load(context.Background(), client, ctdf.TimeWindow{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 2*time.Second)
	assert.Len(t, session.Path, 4)

	t.Run("ManagerDropsStalledLoad", func(t *testing.T) {
		blocking := datasource.TrackSourceFunc(func(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

		manager := NewManager(blocking, config, nil)
		defer manager.CloseAll()

		_, err := manager.Load(context.Background(), "TRK-1", ctdf.TimeWindow{})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		_, ok := manager.Get("TRK-1")
		assert.False(t, ok)
	})
}

func TestSurfaceSink(t *testing.T) {
	recorder := render.NewRecorder()
	sink := NewSurfaceSink(recorder, "TRK-1", 16, 200*time.Millisecond)

	controller := NewController(testTick, DefaultSpeeds, sink)
	controller.Load(eastwardPath(3))
	require.NoError(t, controller.Play())
	controller.Elapse(testTick)

	commands := recorder.Commands()
	require.Len(t, commands, 6)
	assert.Equal(t, render.CommandCreateMarker, commands[0].Type)
	assert.Equal(t, "playback:TRK-1", commands[0].MarkerID)
	assert.Equal(t, render.CommandSetCamera, commands[1].Type)
	assert.Equal(t, render.CommandUpdateMarker, commands[2].Type)
	assert.Equal(t, render.CommandAnimateCamera, commands[3].Type)

	// The frame after the first step carries the eastward heading
	assert.True(t, commands[4].Icon.Oriented)
	assert.InDelta(t, 90, commands[4].Icon.Rotation, 1e-6)
	assert.Equal(t, int64(200), commands[5].DurationMS)

	sink.Close()
	assert.Len(t, recorder.OfType(render.CommandRemoveMarker), 1)

	controller.Elapse(testTick)
	assert.Len(t, recorder.Commands(), 7)
}

func TestManager(t *testing.T) {
	recorder := render.NewRecorder()

	var fetches atomic.Int32
	source := datasource.TrackSourceFunc(func(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error) {
		fetches.Add(1)
		if deviceID == "BROKEN" {
			return nil, errors.New("no such device")
		}
		return sixteenMetreTrack, nil
	})

	manager := NewManager(source, testConfig, func(deviceID string) FrameSink {
		return NewSurfaceSink(recorder, deviceID, 14, 0)
	})
	defer manager.CloseAll()

	first, err := manager.Load(context.Background(), "TRK-1", ctdf.TimeWindow{})
	require.NoError(t, err)

	got, ok := manager.Get("TRK-1")
	require.True(t, ok)
	assert.Same(t, first, got)

	second, err := manager.Load(context.Background(), "TRK-1", ctdf.TimeWindow{})
	require.NoError(t, err)
	got, _ = manager.Get("TRK-1")
	assert.Same(t, second, got)

	// Replacing the first session removed its marker
	assert.Len(t, recorder.OfType(render.CommandRemoveMarker), 1)

	_, err = manager.Load(context.Background(), "BROKEN", ctdf.TimeWindow{})
	assert.Error(t, err)
	_, ok = manager.Get("BROKEN")
	assert.False(t, ok)

	sessions := manager.LoadMany(context.Background(), []string{"TRK-2", "TRK-3", "BROKEN"}, ctdf.TimeWindow{})
	assert.Len(t, sessions, 2)

	require.NoError(t, second.Controller.Play())
	assert.Eventually(t, func() bool {
		return second.Controller.Status().State == StateStopped && second.Controller.Status().Index == 3
	}, 2*time.Second, 5*time.Millisecond)

	manager.Close("TRK-1")
	_, ok = manager.Get("TRK-1")
	assert.False(t, ok)
}

func TestGetConfig(t *testing.T) {
	t.Setenv("FLEETTRACK_PLAYBACK_INTERVAL_METERS", "-3")
	t.Setenv("FLEETTRACK_PLAYBACK_TICK", "250ms")
	t.Setenv("FLEETTRACK_PLAYBACK_SPEEDS", "1,4")
	t.Setenv("FLEETTRACK_TRACK_FETCH_TIMEOUT", "5s")

	config := GetConfig()
	assert.Equal(t, DefaultIntervalMeters, config.IntervalMeters)
	assert.Equal(t, 5*time.Second, config.FetchTimeout)
	assert.Equal(t, 250*time.Millisecond, config.Tick)
	assert.Equal(t, []float64{1, 4}, config.Speeds)
}
