package api

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/datasource"
	"github.com/travigo/fleettrack/pkg/elastic_client"
	"github.com/travigo/fleettrack/pkg/geocode"
	"github.com/travigo/fleettrack/pkg/livemap"
	"github.com/travigo/fleettrack/pkg/playback"
	"github.com/travigo/fleettrack/pkg/redis_client"
	"github.com/travigo/fleettrack/pkg/render"
	"github.com/travigo/fleettrack/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the operator web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:  "screens",
						Value: "data/screens",
						Usage: "directory holding the screen definitions",
					},
					&cli.StringFlag{
						Name:  "track-source",
						Value: datasource.TrackSourceHTTP,
						Usage: "where playback tracks come from (http, mongo or csv)",
					},
					&cli.StringFlag{
						Name:    "track-location",
						EnvVars: []string{"FLEETTRACK_TRACK_SOURCE_LOCATION"},
						Usage:   "base URL or CSV path of the track source",
					},
					&cli.StringSliceFlag{
						Name:    "playback-mirror",
						EnvVars: []string{"FLEETTRACK_PLAYBACK_MIRROR_SCREENS"},
						Usage:   "screens that also receive the playback render commands",
					},
				},
				Action: func(c *cli.Context) error {
					screens, err := livemap.LoadScreens(c.String("screens"))
					if err != nil {
						return err
					}

					if err := redis_client.Connect(); err != nil {
						return fmt.Errorf("connecting to redis: %w", err)
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}
					defer elastic_client.WaitUntilQueueEmpty()

					trackSource, err := datasource.NewTrackSource(c.String("track-source"), c.String("track-location"))
					if err != nil {
						return err
					}
					trackSource = datasource.WithCache(trackSource, redis_client.Client)

					liveConfig := livemap.GetConfig()

					registry := livemap.NewRegistry(screens, func(screen livemap.ScreenDefinition) render.Surface {
						return queueSurface(screen.Identifier)
					}, geocode.NewFromEnvironment(redis_client.Client), liveConfig)

					playbackSurface := newPlaybackSurface(c.StringSlice("playback-mirror"))
					manager := playback.NewManager(trackSource, playback.GetConfig(), func(deviceID string) playback.FrameSink {
						return playback.NewSurfaceSink(playbackSurface, deviceID, liveConfig.DefaultZoom, liveConfig.CameraAnimation)
					})
					defer manager.CloseAll()

					ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					go registry.Run(ctx)
					for _, engine := range registry.Engines() {
						go livemap.LogSelections(ctx, engine)
					}

					app := NewApp(registry, manager)
					go func() {
						<-ctx.Done()
						if err := app.Shutdown(); err != nil {
							log.Error().Err(err).Msg("Failed to shut down web server")
						}
					}()

					return app.Listen(c.String("listen"))
				},
			},
		},
	}
}

func queueSurface(screen string) render.Surface {
	surface, err := render.NewQueueSurface(screen)
	if err != nil {
		log.Error().Err(err).Str("screen", screen).Msg("Render queue unavailable, commands will be discarded")
		return render.Discard{}
	}
	return surface
}

// newPlaybackSurface renders playback onto its own queue, copying every command
// to the mirror screens when any are configured
func newPlaybackSurface(mirrors []string) render.Surface {
	surfaces := render.Tee{queueSurface("playback")}
	for _, screen := range util.UniqueStrings(mirrors) {
		if screen == "playback" {
			continue
		}
		surfaces = append(surfaces, queueSurface(screen))
	}

	if len(surfaces) == 1 {
		return surfaces[0]
	}
	return surfaces
}
