package render

import (
	"sync"
	"time"

	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/geo"
)

// Recorder keeps every command it receives in order
type Recorder struct {
	mutex    sync.Mutex
	commands []Command
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(command Command) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.commands = append(r.commands, command)
}

func (r *Recorder) CreateMarker(id string, point geo.Point, icon ctdf.Icon) {
	r.record(createMarkerCommand(id, point, icon))
}

func (r *Recorder) UpdateMarker(id string, point *geo.Point, icon *ctdf.Icon) {
	r.record(updateMarkerCommand(id, point, icon))
}

func (r *Recorder) RemoveMarker(id string) {
	r.record(removeMarkerCommand(id))
}

func (r *Recorder) SetCamera(point geo.Point, zoom float64) {
	r.record(setCameraCommand(point, zoom))
}

func (r *Recorder) AnimateCamera(point geo.Point, zoom float64, duration time.Duration) {
	r.record(animateCameraCommand(point, zoom, duration))
}

func (r *Recorder) Commands() []Command {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	commands := make([]Command, len(r.commands))
	copy(commands, r.commands)
	return commands
}

// OfType returns the recorded commands of a single type
func (r *Recorder) OfType(commandType CommandType) []Command {
	var matching []Command
	for _, command := range r.Commands() {
		if command.Type == commandType {
			matching = append(matching, command)
		}
	}
	return matching
}

func (r *Recorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.commands = nil
}
