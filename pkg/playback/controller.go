package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/geo"
	"golang.org/x/exp/slices"
)

var ErrInvalidSpeed = errors.New("speed multiplier not supported")
var ErrEmptyPath = errors.New("playback path is empty")

type State string

const (
	StateStopped State = "Stopped"
	StatePlaying State = "Playing"
	StatePaused  State = "Paused"
	StateSeeking State = "Seeking"
)

// Frame is emitted whenever the playback index settles on a new point
type Frame struct {
	Index   int                `json:"index"`
	Point   ctdf.PlaybackPoint `json:"point"`
	Heading float64            `json:"heading"`
	State   State              `json:"state"`
	Ended   bool               `json:"ended"`
}

type FrameSink interface {
	Frame(frame Frame)
}

type FrameSinkFunc func(frame Frame)

func (f FrameSinkFunc) Frame(frame Frame) {
	f(frame)
}

type Status struct {
	State   State               `json:"state"`
	Index   int                 `json:"index"`
	Length  int                 `json:"length"`
	Speed   float64             `json:"speed"`
	Heading float64             `json:"heading"`
	Point   *ctdf.PlaybackPoint `json:"point,omitempty"`
}

// Controller drives an index along a built path. All methods are safe to call
// from the API while Run is ticking; frames are handed to the sink outside the lock.
type Controller struct {
	mutex sync.Mutex

	path        []ctdf.PlaybackPoint
	index       int
	state       State
	resumeState State
	heading     float64

	speed        float64
	speeds       []float64
	baseInterval time.Duration
	accumulated  time.Duration

	sink FrameSink
}

func NewController(baseInterval time.Duration, speeds []float64, sink FrameSink) *Controller {
	if baseInterval <= 0 {
		baseInterval = DefaultTick
	}
	if len(speeds) == 0 {
		speeds = DefaultSpeeds
	}
	if sink == nil {
		sink = FrameSinkFunc(func(Frame) {})
	}

	return &Controller{
		state:        StateStopped,
		speed:        speeds[0],
		speeds:       speeds,
		baseInterval: baseInterval,
		sink:         sink,
	}
}

func (c *Controller) emit(frames []Frame) {
	for _, frame := range frames {
		c.sink.Frame(frame)
	}
}

// frame must be called with the lock held
func (c *Controller) frame(ended bool) Frame {
	return Frame{
		Index:   c.index,
		Point:   c.path[c.index],
		Heading: c.heading,
		State:   c.state,
		Ended:   ended,
	}
}

// moveTo must be called with the lock held
func (c *Controller) moveTo(index int) {
	c.index = index

	if index > 0 {
		previous := c.path[index-1].Position
		current := c.path[index].Position

		if previous != current {
			c.heading = geo.Bearing(previous, current)
		}
	}
}

// Load replaces the path and resets to the first point
func (c *Controller) Load(path []ctdf.PlaybackPoint) {
	c.mutex.Lock()

	c.path = path
	c.index = 0
	c.state = StateStopped
	c.resumeState = StateStopped
	c.heading = 0
	c.accumulated = 0

	var frames []Frame
	if len(c.path) > 0 {
		frames = append(frames, c.frame(false))
	}

	c.mutex.Unlock()
	c.emit(frames)
}

func (c *Controller) Play() error {
	c.mutex.Lock()

	if len(c.path) == 0 {
		c.mutex.Unlock()
		return ErrEmptyPath
	}

	var frames []Frame

	switch c.state {
	case StateStopped:
		if c.index >= len(c.path)-1 && len(c.path) > 1 {
			c.moveTo(0)
			c.heading = 0
		}
		c.state = StatePlaying
		c.accumulated = 0
		frames = append(frames, c.frame(false))
	case StatePaused:
		c.state = StatePlaying
		c.accumulated = 0
	case StateSeeking:
		c.resumeState = StatePlaying
	}

	c.mutex.Unlock()
	c.emit(frames)

	return nil
}

func (c *Controller) Pause() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	switch c.state {
	case StatePlaying:
		c.state = StatePaused
	case StateSeeking:
		if c.resumeState == StatePlaying {
			c.resumeState = StatePaused
		}
	}
}

// Seek scrubs to index, clamped into the path. The tick loop does not advance
// until SeekEnd is called.
func (c *Controller) Seek(index int) error {
	c.mutex.Lock()

	if len(c.path) == 0 {
		c.mutex.Unlock()
		return ErrEmptyPath
	}

	if c.state != StateSeeking {
		c.resumeState = c.state
		c.state = StateSeeking
	}

	index = max(0, min(index, len(c.path)-1))

	var frames []Frame
	if index != c.index {
		c.moveTo(index)
		frames = append(frames, c.frame(false))
	}

	c.mutex.Unlock()
	c.emit(frames)

	return nil
}

// SeekNearest scrubs to the path point closest to the given position
func (c *Controller) SeekNearest(point geo.Point) (int, error) {
	c.mutex.Lock()
	candidates := make([]geo.Candidate, len(c.path))
	for i := range c.path {
		candidates[i] = geo.Candidate{ID: fmt.Sprint(i), Position: &c.path[i].Position}
	}
	c.mutex.Unlock()

	match, ok := geo.Nearest(point, candidates)
	if !ok {
		return 0, ErrEmptyPath
	}

	return match.Index, c.Seek(match.Index)
}

// SeekEnd finishes a scrub, resuming playback if it was playing before the seek
// started and pausing otherwise
func (c *Controller) SeekEnd() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != StateSeeking {
		return
	}

	if c.resumeState == StatePlaying {
		c.state = StatePlaying
	} else {
		c.state = StatePaused
	}
	c.resumeState = StateStopped
	c.accumulated = 0
}

func (c *Controller) SetSpeed(multiplier float64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !slices.Contains(c.speeds, multiplier) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, multiplier)
	}

	c.speed = multiplier

	return nil
}

// Elapse feeds wall clock time into the controller and returns how many times
// the index advanced. Nothing happens unless playing.
func (c *Controller) Elapse(d time.Duration) int {
	c.mutex.Lock()

	if c.state != StatePlaying || len(c.path) == 0 {
		c.mutex.Unlock()
		return 0
	}

	step := time.Duration(float64(c.baseInterval) / c.speed)
	c.accumulated += d

	var frames []Frame
	advances := 0

	for c.accumulated >= step {
		c.accumulated -= step

		if c.index >= len(c.path)-1 {
			c.state = StateStopped
			c.accumulated = 0
			frames = append(frames, c.frame(true))
			break
		}

		c.moveTo(c.index + 1)
		advances++
		frames = append(frames, c.frame(false))
	}

	c.mutex.Unlock()
	c.emit(frames)

	return advances
}

// Run ticks the controller until the context is cancelled
func (c *Controller) Run(ctx context.Context) {
	c.mutex.Lock()
	resolution := time.Duration(float64(c.baseInterval) / slices.Max(c.speeds))
	c.mutex.Unlock()

	ticker := time.NewTicker(resolution)
	defer ticker.Stop()

	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.Elapse(now.Sub(last))
			last = now
		}
	}
}

func (c *Controller) Status() Status {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	status := Status{
		State:   c.state,
		Index:   c.index,
		Length:  len(c.path),
		Speed:   c.speed,
		Heading: c.heading,
	}

	if len(c.path) > 0 {
		point := c.path[c.index]
		status.Point = &point
	}

	return status
}

func (c *Controller) Speeds() []float64 {
	return slices.Clone(c.speeds)
}
