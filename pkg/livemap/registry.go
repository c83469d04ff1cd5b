package livemap

import (
	"context"

	"github.com/sourcegraph/conc"
	"github.com/travigo/fleettrack/pkg/geocode"
	"github.com/travigo/fleettrack/pkg/render"
)

// Registry holds one engine per screen
type Registry struct {
	engines map[string]*Engine
	order   []string
}

func NewRegistry(screens []ScreenDefinition, newSurface func(screen ScreenDefinition) render.Surface, geocoder geocode.Geocoder, config Config) *Registry {
	registry := &Registry{
		engines: map[string]*Engine{},
	}

	for _, screen := range screens {
		registry.engines[screen.Identifier] = NewEngine(screen, screen.LiveSource(), newSurface(screen), geocoder, config)
		registry.order = append(registry.order, screen.Identifier)
	}

	return registry
}

func (r *Registry) Get(identifier string) (*Engine, bool) {
	engine, ok := r.engines[identifier]
	return engine, ok
}

func (r *Registry) Engines() []*Engine {
	engines := make([]*Engine, 0, len(r.order))
	for _, identifier := range r.order {
		engines = append(engines, r.engines[identifier])
	}
	return engines
}

// Run runs every engine until the context is cancelled
func (r *Registry) Run(ctx context.Context) {
	var wg conc.WaitGroup

	for _, engine := range r.Engines() {
		engine := engine
		wg.Go(func() {
			engine.Run(ctx)
		})
	}

	wg.Wait()
}
