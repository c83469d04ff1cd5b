package playback

import (
	"sync"
	"time"

	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/render"
)

// SurfaceSink draws playback frames as a single oriented marker that the
// camera follows
type SurfaceSink struct {
	Surface   render.Surface
	MarkerID  string
	Zoom      float64
	Animation time.Duration

	mutex   sync.Mutex
	created bool
	closed  bool
}

func NewSurfaceSink(surface render.Surface, deviceID string, zoom float64, animation time.Duration) *SurfaceSink {
	return &SurfaceSink{
		Surface:   surface,
		MarkerID:  "playback:" + deviceID,
		Zoom:      zoom,
		Animation: animation,
	}
}

func (s *SurfaceSink) Frame(frame Frame) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}

	icon := ctdf.PlaybackIcon(frame.Heading)
	point := frame.Point.Position

	if !s.created {
		s.Surface.CreateMarker(s.MarkerID, point, icon)
		s.Surface.SetCamera(point, s.Zoom)
		s.created = true
		return
	}

	s.Surface.UpdateMarker(s.MarkerID, &point, &icon)
	s.Surface.AnimateCamera(point, s.Zoom, s.Animation)
}

// Close removes the playback marker, later frames are ignored
func (s *SurfaceSink) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.created {
		s.Surface.RemoveMarker(s.MarkerID)
	}
	s.created = false
	s.closed = true
}
