package livemap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/elastic_client"
	"github.com/travigo/fleettrack/pkg/geocode"
	"github.com/travigo/fleettrack/pkg/redis_client"
	"github.com/travigo/fleettrack/pkg/render"
	"github.com/travigo/fleettrack/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "live-map",
		Usage: "Reconcile live vehicle feeds onto the role screens' maps",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "screens",
				Value: "data/screens",
				Usage: "directory holding the screen definitions",
			},
		},
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "poll the live feeds and publish render commands",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "screen",
						Usage: "only run these screens",
					},
				},
				Action: func(c *cli.Context) error {
					screens, err := LoadScreens(c.String("screens"))
					if err != nil {
						return err
					}
					screens = selectScreens(screens, c.StringSlice("screen"))
					if len(screens) == 0 {
						return fmt.Errorf("no screens to run")
					}

					if err := redis_client.Connect(); err != nil {
						return fmt.Errorf("connecting to redis: %w", err)
					}
					if err := elastic_client.Connect(false); err != nil {
						return fmt.Errorf("connecting to elasticsearch: %w", err)
					}
					defer elastic_client.WaitUntilQueueEmpty()

					var surfaceErr error
					registry := NewRegistry(screens, func(screen ScreenDefinition) render.Surface {
						surface, err := render.NewQueueSurface(screen.Identifier)
						if err != nil {
							surfaceErr = err
							return render.Discard{}
						}
						return surface
					}, geocode.NewFromEnvironment(redis_client.Client), GetConfig())
					if surfaceErr != nil {
						return surfaceErr
					}

					ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					registry.Run(ctx)

					return nil
				},
			},
			{
				Name:  "check",
				Usage: "validate the screen definitions",
				Action: func(c *cli.Context) error {
					screens, err := LoadScreens(c.String("screens"))
					if err != nil {
						return err
					}

					for _, screen := range screens {
						pretty.Println(screen)
					}

					log.Info().Int("screens", len(screens)).Msg("Screen definitions are valid")

					return nil
				},
			},
		},
	}
}

func selectScreens(screens []ScreenDefinition, identifiers []string) []ScreenDefinition {
	if len(identifiers) == 0 {
		return screens
	}

	var selected []ScreenDefinition
	for _, identifier := range util.UniqueStrings(identifiers) {
		if screen, ok := FindScreen(screens, identifier); ok {
			selected = append(selected, screen)
		} else {
			log.Warn().Str("screen", identifier).Msg("Unknown screen")
		}
	}
	return selected
}

// LogSelections logs the selection events of an engine until the context ends
func LogSelections(ctx context.Context, engine *Engine) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-engine.Events():
			log.Info().
				Str("screen", event.Screen).
				Str("device", event.DeviceID).
				Str("status", string(event.Status)).
				Str("address", event.Address).
				Msg("Vehicle selected")
		}
	}
}
