package render

import (
	"time"

	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/geo"
)

// Surface is the write-only map the engines draw on. Implementations must not
// block for long and report their own failures; nothing is returned to the caller.
type Surface interface {
	CreateMarker(id string, point geo.Point, icon ctdf.Icon)
	UpdateMarker(id string, point *geo.Point, icon *ctdf.Icon)
	RemoveMarker(id string)
	SetCamera(point geo.Point, zoom float64)
	AnimateCamera(point geo.Point, zoom float64, duration time.Duration)
}

type CommandType string

const (
	CommandCreateMarker  CommandType = "CreateMarker"
	CommandUpdateMarker  CommandType = "UpdateMarker"
	CommandRemoveMarker  CommandType = "RemoveMarker"
	CommandSetCamera     CommandType = "SetCamera"
	CommandAnimateCamera CommandType = "AnimateCamera"
)

// Command is the serialised form of a single surface call
type Command struct {
	Type       CommandType `json:"type"`
	Screen     string      `json:"screen,omitempty"`
	MarkerID   string      `json:"markerId,omitempty"`
	Point      *geo.Point  `json:"point,omitempty"`
	Icon       *ctdf.Icon  `json:"icon,omitempty"`
	Zoom       float64     `json:"zoom,omitempty"`
	DurationMS int64       `json:"durationMs,omitempty"`
}

// Apply replays the command onto another surface
func (c Command) Apply(surface Surface) {
	switch c.Type {
	case CommandCreateMarker:
		var icon ctdf.Icon
		if c.Icon != nil {
			icon = *c.Icon
		}
		if c.Point != nil {
			surface.CreateMarker(c.MarkerID, *c.Point, icon)
		}
	case CommandUpdateMarker:
		surface.UpdateMarker(c.MarkerID, c.Point, c.Icon)
	case CommandRemoveMarker:
		surface.RemoveMarker(c.MarkerID)
	case CommandSetCamera:
		if c.Point != nil {
			surface.SetCamera(*c.Point, c.Zoom)
		}
	case CommandAnimateCamera:
		if c.Point != nil {
			surface.AnimateCamera(*c.Point, c.Zoom, time.Duration(c.DurationMS)*time.Millisecond)
		}
	}
}

func createMarkerCommand(id string, point geo.Point, icon ctdf.Icon) Command {
	return Command{Type: CommandCreateMarker, MarkerID: id, Point: &point, Icon: &icon}
}

func updateMarkerCommand(id string, point *geo.Point, icon *ctdf.Icon) Command {
	command := Command{Type: CommandUpdateMarker, MarkerID: id}
	if point != nil {
		p := *point
		command.Point = &p
	}
	if icon != nil {
		i := *icon
		command.Icon = &i
	}
	return command
}

func removeMarkerCommand(id string) Command {
	return Command{Type: CommandRemoveMarker, MarkerID: id}
}

func setCameraCommand(point geo.Point, zoom float64) Command {
	return Command{Type: CommandSetCamera, Point: &point, Zoom: zoom}
}

func animateCameraCommand(point geo.Point, zoom float64, duration time.Duration) Command {
	return Command{Type: CommandAnimateCamera, Point: &point, Zoom: zoom, DurationMS: duration.Milliseconds()}
}

// Discard drops every command
type Discard struct{}

func (Discard) CreateMarker(string, geo.Point, ctdf.Icon) {}
func (Discard) UpdateMarker(string, *geo.Point, *ctdf.Icon) {}
func (Discard) RemoveMarker(string) {}
func (Discard) SetCamera(geo.Point, float64) {}
func (Discard) AnimateCamera(geo.Point, float64, time.Duration) {}
