package playback

import (
	"time"

	"github.com/travigo/fleettrack/pkg/util"
)

const DefaultIntervalMeters = 5.0
const DefaultTick = 100 * time.Millisecond
const DefaultFetchTimeout = 15 * time.Second

var DefaultSpeeds = []float64{1, 1.5, 2}

type Config struct {
	IntervalMeters float64
	Tick           time.Duration
	Speeds         []float64

	// FetchTimeout bounds a single track fetch. Zero leaves it to the caller's context.
	FetchTimeout time.Duration
}

// GetConfig reads the playback settings from the environment, falling back to
// the defaults for anything unset or invalid
func GetConfig() Config {
	env := util.GetEnvironmentVariables()

	config := Config{
		IntervalMeters: util.GetEnvFloat(env, "FLEETTRACK_PLAYBACK_INTERVAL_METERS", DefaultIntervalMeters),
		Tick:           util.GetEnvDuration(env, "FLEETTRACK_PLAYBACK_TICK", DefaultTick),
		Speeds:         util.GetEnvFloatList(env, "FLEETTRACK_PLAYBACK_SPEEDS", DefaultSpeeds),
		FetchTimeout:   util.GetEnvDuration(env, "FLEETTRACK_TRACK_FETCH_TIMEOUT", DefaultFetchTimeout),
	}

	if config.IntervalMeters <= 0 {
		config.IntervalMeters = DefaultIntervalMeters
	}

	if config.FetchTimeout <= 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}

	var validSpeeds []float64
	for _, speed := range config.Speeds {
		if speed > 0 {
			validSpeeds = append(validSpeeds, speed)
		}
	}
	if len(validSpeeds) == 0 {
		validSpeeds = DefaultSpeeds
	}
	config.Speeds = validSpeeds

	return config
}
