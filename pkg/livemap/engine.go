package livemap

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/datasource"
	"github.com/travigo/fleettrack/pkg/geo"
	"github.com/travigo/fleettrack/pkg/geocode"
	"github.com/travigo/fleettrack/pkg/render"
	"github.com/travigo/fleettrack/pkg/util"
)

var ErrEntityNotTracked = errors.New("entity is not tracked")

// Engine reconciles a live feed into markers on one screen's map. Each cycle
// and each operator command is applied under the engine lock, so the surface
// sees a total order of changes.
type Engine struct {
	Screen   ScreenDefinition
	Source   datasource.LiveSource
	Surface  render.Surface
	Geocoder geocode.Geocoder
	Config   Config

	// OnCycle is called after every cycle, by default the report is indexed to Elasticsearch
	OnCycle func(report CycleReport)

	mutex     sync.Mutex
	entities  []*TrackedEntity
	index     map[string]int
	filter    string
	cameraSet bool
	cycle     int

	events chan EntitySelected
}

func NewEngine(screen ScreenDefinition, source datasource.LiveSource, surface render.Surface, geocoder geocode.Geocoder, config Config) *Engine {
	if geocoder == nil {
		geocoder = geocode.Unavailable{}
	}

	return &Engine{
		Screen:   screen,
		Source:   source,
		Surface:  surface,
		Geocoder: geocoder,
		Config:   config.ForScreen(screen),
		OnCycle:  indexCycleReport,

		index:  map[string]int{},
		filter: screen.Filter,
		events: make(chan EntitySelected, 16),
	}
}

// Run polls until the context is cancelled
func (e *Engine) Run(ctx context.Context) {
	log.Info().
		Str("screen", e.Screen.Identifier).
		Str("interval", e.Config.PollInterval.String()).
		Msg("Starting live map")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("screen", e.Screen.Identifier).Msg("Stopping live map")
			return
		case <-timer.C:
		}

		startTime := time.Now()
		e.Cycle(ctx)

		waitTime := e.Config.PollInterval - time.Since(startTime)
		if waitTime < 0 {
			waitTime = 0
		}
		timer.Reset(waitTime)
	}
}

// Cycle does a single fetch and reconcile
func (e *Engine) Cycle(ctx context.Context) CycleReport {
	startTime := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, e.Config.FetchTimeout)
	snapshots, err := e.Source.FetchLive(fetchCtx)
	cancel()

	if ctx.Err() != nil {
		return CycleReport{Screen: e.Screen.Identifier, FetchFailed: true, Timestamp: startTime}
	}

	var report CycleReport
	if err != nil {
		e.mutex.Lock()
		e.cycle++
		report = CycleReport{
			Screen:      e.Screen.Identifier,
			Cycle:       e.cycle,
			FetchFailed: true,
			Tracked:     len(e.entities),
		}
		e.mutex.Unlock()

		log.Error().Err(err).Str("screen", e.Screen.Identifier).Int("cycle", report.Cycle).Msg("Failed to fetch live vehicles, skipping cycle")
	} else {
		report = e.Reconcile(snapshots)
	}

	report.Timestamp = startTime
	report.Duration = time.Since(startTime)

	log.Debug().
		Str("screen", report.Screen).
		Int("cycle", report.Cycle).
		Int("received", report.Received).
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("removed", report.Removed).
		Int("tracked", report.Tracked).
		Str("duration", report.Duration.String()).
		Msg("Live map cycle")

	if e.OnCycle != nil {
		e.OnCycle(report)
	}

	return report
}

// Reconcile diffs a snapshot list against the tracked entities and draws the difference
func (e *Engine) Reconcile(snapshots []ctdf.VehicleSnapshot) CycleReport {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.cycle++
	report := CycleReport{
		Screen:   e.Screen.Identifier,
		Cycle:    e.cycle,
		Received: len(snapshots),
	}

	if len(snapshots) == 0 {
		report.Removed = len(e.entities)
		e.clear()
		return report
	}

	for _, snapshot := range snapshots {
		if !snapshot.Valid() {
			report.Skipped++
			continue
		}

		deviceID := snapshot.Identifier()
		if !util.ContainsFold(deviceID, e.filter) {
			report.Skipped++
			continue
		}

		entity := e.lookup(deviceID)
		position, ok := snapshot.Position()

		switch {
		case !ok && entity != nil:
			e.remove(deviceID)
			report.Removed++
		case !ok:
			report.Skipped++
		case entity == nil:
			e.create(snapshot, position)
			report.Created++
		default:
			if e.update(entity, snapshot, position) {
				report.Updated++
			}
		}
	}

	if !e.cameraSet && len(e.entities) > 0 {
		e.Surface.SetCamera(e.entities[0].Position, e.Config.DefaultZoom)
		e.cameraSet = true
	}

	report.Tracked = len(e.entities)

	return report
}

func (e *Engine) lookup(deviceID string) *TrackedEntity {
	if i, ok := e.index[deviceID]; ok {
		return e.entities[i]
	}
	return nil
}

func (e *Engine) create(snapshot ctdf.VehicleSnapshot, position geo.Point) {
	bearing, _ := snapshot.CourseHint()

	status := snapshot.Status()
	variant := ctdf.Static(status)
	if status == ctdf.VehicleStatusRunning {
		variant = ctdf.Running(bearing)
	}

	entity := &TrackedEntity{
		DeviceID: snapshot.Identifier(),
		Bearing:  bearing,
	}
	entity.apply(snapshot, position, variant)

	e.index[entity.DeviceID] = len(e.entities)
	e.entities = append(e.entities, entity)

	e.Surface.CreateMarker(entity.DeviceID, position, entity.Icon)
}

// update returns whether anything was drawn. The bearing only changes when a
// running vehicle actually moved, and by more than MinBearingChange.
func (e *Engine) update(entity *TrackedEntity, snapshot ctdf.VehicleSnapshot, position geo.Point) bool {
	previousIcon := entity.Icon
	positionChanged := entity.Position != position

	status := snapshot.Status()
	variant := entity.Variant

	if status == ctdf.VehicleStatusRunning {
		if positionChanged {
			bearing := geo.Bearing(entity.Position, position)
			if variant.Status != ctdf.VehicleStatusRunning || geo.BearingDifference(entity.Bearing, bearing) > e.Config.MinBearingChange {
				entity.Bearing = bearing
			}
			variant = ctdf.Running(entity.Bearing)
		} else if variant.Status != ctdf.VehicleStatusRunning {
			variant = ctdf.Running(entity.Bearing)
		}
	} else if status != variant.Status {
		variant = ctdf.Static(status)
	}

	entity.apply(snapshot, position, variant)

	iconChanged := entity.Icon != previousIcon
	if !positionChanged && !iconChanged {
		return false
	}

	var pointUpdate *geo.Point
	if positionChanged {
		pointUpdate = &position
	}
	var iconUpdate *ctdf.Icon
	if iconChanged {
		icon := entity.Icon
		iconUpdate = &icon
	}

	e.Surface.UpdateMarker(entity.DeviceID, pointUpdate, iconUpdate)

	return true
}

func (e *Engine) remove(deviceID string) {
	i, ok := e.index[deviceID]
	if !ok {
		return
	}

	e.entities = append(e.entities[:i], e.entities[i+1:]...)
	delete(e.index, deviceID)
	for j := i; j < len(e.entities); j++ {
		e.index[e.entities[j].DeviceID] = j
	}

	e.Surface.RemoveMarker(deviceID)
}

func (e *Engine) clear() {
	for _, entity := range e.entities {
		e.Surface.RemoveMarker(entity.DeviceID)
	}

	e.entities = nil
	e.index = map[string]int{}
}

// SetFilter narrows the map to devices whose id contains query, ignoring case.
// Entities that no longer match are removed straight away.
func (e *Engine) SetFilter(query string) int {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.filter = query

	var removing []string
	for _, entity := range e.entities {
		if !util.ContainsFold(entity.DeviceID, query) {
			removing = append(removing, entity.DeviceID)
		}
	}

	for _, deviceID := range removing {
		e.remove(deviceID)
	}

	return len(removing)
}

func (e *Engine) Filter() string {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.filter
}

// Nearest finds the tracked entity closest to the reference point
func (e *Engine) Nearest(reference geo.Point) (TrackedEntity, float64, bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	candidates := make([]geo.Candidate, len(e.entities))
	for i, entity := range e.entities {
		candidates[i] = geo.Candidate{ID: entity.DeviceID, Position: &entity.Position}
	}

	match, ok := geo.Nearest(reference, candidates)
	if !ok {
		return TrackedEntity{}, 0, false
	}

	return *e.entities[match.Index], match.Distance, true
}

// Select focuses the camera on a vehicle and emits an EntitySelected event
func (e *Engine) Select(ctx context.Context, deviceID string) (EntitySelected, error) {
	e.mutex.Lock()
	entity := e.lookup(deviceID)
	if entity == nil {
		e.mutex.Unlock()
		return EntitySelected{}, ErrEntityNotTracked
	}
	selected := *entity
	e.Surface.AnimateCamera(selected.Position, e.Config.DefaultZoom, e.Config.CameraAnimation)
	e.mutex.Unlock()

	event := EntitySelected{
		Type:      EventTypeEntitySelected,
		Screen:    e.Screen.Identifier,
		DeviceID:  selected.DeviceID,
		Position:  selected.Position,
		Latitude:  selected.DisplayLatitude(),
		Longitude: selected.DisplayLongitude(),
		Status:    selected.Variant.Status,
		Speed:     selected.Speed,
		Ignition:  selected.Ignition,
		Timestamp: selected.Snapshot.Timestamp.String(),
		Address:   e.Geocoder.ReverseGeocode(ctx, selected.Position),
		Selected:  time.Now(),
	}

	select {
	case e.events <- event:
	default:
		log.Warn().Str("screen", e.Screen.Identifier).Str("device", deviceID).Msg("Selection event dropped, nobody is listening")
	}

	return event, nil
}

// Events delivers EntitySelected events to the presentation layer
func (e *Engine) Events() <-chan EntitySelected {
	return e.events
}

// Entities returns a copy of the tracked entities in the order they appeared
func (e *Engine) Entities() []TrackedEntity {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	entities := make([]TrackedEntity, len(e.entities))
	for i, entity := range e.entities {
		entities[i] = *entity
	}
	return entities
}

func (e *Engine) Entity(deviceID string) (TrackedEntity, bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	entity := e.lookup(deviceID)
	if entity == nil {
		return TrackedEntity{}, false
	}
	return *entity, true
}
