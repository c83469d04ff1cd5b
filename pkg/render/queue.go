package render

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/geo"
	"github.com/travigo/fleettrack/pkg/redis_client"
)

// Publisher is the part of rmq.Queue the surface needs
type Publisher interface {
	PublishBytes(payload ...[]byte) error
}

// QueueSurface serialises every command onto a redis queue that the
// presentation layer consumes
type QueueSurface struct {
	Screen string
	Queue  Publisher
}

func NewQueueSurface(screen string) (*QueueSurface, error) {
	if redis_client.QueueConnection == nil {
		return nil, fmt.Errorf("redis queue connection not set up")
	}

	queue, err := redis_client.QueueConnection.OpenQueue(fmt.Sprintf("render-%s", screen))
	if err != nil {
		return nil, fmt.Errorf("opening render queue for %s: %w", screen, err)
	}

	return &QueueSurface{
		Screen: screen,
		Queue:  queue,
	}, nil
}

func (q *QueueSurface) publish(command Command) {
	command.Screen = q.Screen

	commandBytes, err := json.Marshal(command)
	if err != nil {
		log.Error().Err(err).Str("screen", q.Screen).Msg("Failed to encode render command")
		return
	}

	if err := q.Queue.PublishBytes(commandBytes); err != nil {
		log.Error().Err(err).Str("screen", q.Screen).Str("type", string(command.Type)).Msg("Failed to publish render command")
	}
}

func (q *QueueSurface) CreateMarker(id string, point geo.Point, icon ctdf.Icon) {
	q.publish(createMarkerCommand(id, point, icon))
}

func (q *QueueSurface) UpdateMarker(id string, point *geo.Point, icon *ctdf.Icon) {
	q.publish(updateMarkerCommand(id, point, icon))
}

func (q *QueueSurface) RemoveMarker(id string) {
	q.publish(removeMarkerCommand(id))
}

func (q *QueueSurface) SetCamera(point geo.Point, zoom float64) {
	q.publish(setCameraCommand(point, zoom))
}

func (q *QueueSurface) AnimateCamera(point geo.Point, zoom float64, duration time.Duration) {
	q.publish(animateCameraCommand(point, zoom, duration))
}

// Tee sends every command to all the given surfaces in order
type Tee []Surface

func (t Tee) CreateMarker(id string, point geo.Point, icon ctdf.Icon) {
	for _, surface := range t {
		surface.CreateMarker(id, point, icon)
	}
}

func (t Tee) UpdateMarker(id string, point *geo.Point, icon *ctdf.Icon) {
	for _, surface := range t {
		surface.UpdateMarker(id, point, icon)
	}
}

func (t Tee) RemoveMarker(id string) {
	for _, surface := range t {
		surface.RemoveMarker(id)
	}
}

func (t Tee) SetCamera(point geo.Point, zoom float64) {
	for _, surface := range t {
		surface.SetCamera(point, zoom)
	}
}

func (t Tee) AnimateCamera(point geo.Point, zoom float64, duration time.Duration) {
	for _, surface := range t {
		surface.AnimateCamera(point, zoom, duration)
	}
}
