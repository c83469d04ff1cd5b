package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/api"
	"github.com/travigo/fleettrack/pkg/livemap"
	"github.com/travigo/fleettrack/pkg/playback"
	"github.com/travigo/fleettrack/pkg/util"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	_ "time/tzdata"
)

func main() {
	env := util.GetEnvironmentVariables()

	var output io.Writer = os.Stdout
	if env["FLEETTRACK_LOG_FORMAT"] != "JSON" {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	// Files always get JSON so they can be shipped as is
	if logFile := env["FLEETTRACK_LOG_FILE"]; logFile != "" {
		rotatingFile := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    util.GetEnvInt(env, "FLEETTRACK_LOG_FILE_MAX_SIZE", 100),
			MaxBackups: util.GetEnvInt(env, "FLEETTRACK_LOG_FILE_MAX_BACKUPS", 5),
			MaxAge:     util.GetEnvInt(env, "FLEETTRACK_LOG_FILE_MAX_AGE", 28),
			Compress:   true,
		}
		defer rotatingFile.Close()

		output = zerolog.MultiLevelWriter(output, rotatingFile)
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	if env["FLEETTRACK_DEBUG"] == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "fleettrack",
		Description: "Live vehicle map and track playback for the fleet",

		Commands: []*cli.Command{
			livemap.RegisterCLI(),
			playback.RegisterCLI(),
			api.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
