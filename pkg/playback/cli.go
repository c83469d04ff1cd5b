package playback

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/datasource"
	"github.com/travigo/fleettrack/pkg/redis_client"
	"github.com/travigo/fleettrack/pkg/render"
	"github.com/urfave/cli/v2"
)

// PathSummary is what `playback build` prints
type PathSummary struct {
	DeviceID string
	Window   string
	Records  int
	Points   int
	Path     int
	First    *ctdf.PlaybackPoint
	Last     *ctdf.PlaybackPoint
	Distance float64
}

func Summarise(session *Session) PathSummary {
	summary := PathSummary{
		DeviceID: session.DeviceID,
		Window:   session.Window.String(),
		Records:  len(session.Records),
		Points:   len(session.Points),
		Path:     len(session.Path),
		Distance: PathDistance(session.Points),
	}

	if len(session.Path) > 0 {
		summary.First = &session.Path[0]
		summary.Last = &session.Path[len(session.Path)-1]
	}

	return summary
}

func RegisterCLI() *cli.Command {
	sourceFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "device",
			Required: true,
			Usage:    "device to play back",
		},
		&cli.StringFlag{
			Name:  "from",
			Usage: "start of the window, blank for unbounded",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "end of the window, blank for unbounded",
		},
		&cli.StringFlag{
			Name:  "duration",
			Usage: "ISO8601 duration of the window when to is not set, eg. PT2H",
		},
		&cli.StringFlag{
			Name:  "track-source",
			Value: datasource.TrackSourceHTTP,
			Usage: "where the track comes from (http, mongo or csv)",
		},
		&cli.StringFlag{
			Name:    "track-location",
			EnvVars: []string{"FLEETTRACK_TRACK_SOURCE_LOCATION"},
			Usage:   "base URL or CSV path of the track source",
		},
	}

	return &cli.Command{
		Name:  "playback",
		Usage: "Build and replay historical vehicle tracks",
		Subcommands: []*cli.Command{
			{
				Name:  "build",
				Usage: "fetch a track and print the built path",
				Flags: sourceFlags,
				Action: func(c *cli.Context) error {
					session, err := loadFromFlags(c, nil)
					if err != nil {
						return err
					}

					pretty.Println(Summarise(session))

					return nil
				},
			},
			{
				Name:  "run",
				Usage: "replay a track onto the playback render queue",
				Flags: append(sourceFlags,
					&cli.Float64Flag{
						Name:  "speed",
						Value: 1,
						Usage: "playback speed multiplier",
					},
					&cli.Float64Flag{
						Name:  "zoom",
						Value: 16,
						Usage: "camera zoom while following the vehicle",
					},
				),
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return fmt.Errorf("connecting to redis: %w", err)
					}

					surface, err := render.NewQueueSurface("playback")
					if err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
					defer stop()

					ended := make(chan struct{})
					var endOnce sync.Once
					surfaceSink := NewSurfaceSink(surface, c.String("device"), c.Float64("zoom"), 800*time.Millisecond)
					defer surfaceSink.Close()

					sink := FrameSinkFunc(func(frame Frame) {
						surfaceSink.Frame(frame)
						if frame.Ended {
							endOnce.Do(func() { close(ended) })
						}
					})

					session, err := loadFromFlags(c, sink)
					if err != nil {
						return err
					}

					if err := session.Controller.SetSpeed(c.Float64("speed")); err != nil {
						return fmt.Errorf("%w, choose one of %v", err, session.Controller.Speeds())
					}
					if err := session.Controller.Play(); err != nil {
						return err
					}

					runCtx, cancel := context.WithCancel(ctx)
					defer cancel()
					go session.Controller.Run(runCtx)

					select {
					case <-ctx.Done():
						log.Info().Str("device", session.DeviceID).Msg("Playback interrupted")
					case <-ended:
						log.Info().Str("device", session.DeviceID).Msg("Playback finished")
					}

					return nil
				},
			},
		},
	}
}

func loadFromFlags(c *cli.Context, sink FrameSink) (*Session, error) {
	window, err := ctdf.ParseTimeWindow(c.String("from"), c.String("to"), c.String("duration"))
	if err != nil {
		return nil, err
	}

	source, err := datasource.NewTrackSource(c.String("track-source"), c.String("track-location"))
	if err != nil {
		return nil, err
	}

	session := NewSession(c.String("device"), GetConfig(), sink)
	if err := session.Load(c.Context, source, window); err != nil {
		return nil, err
	}

	return session, nil
}
