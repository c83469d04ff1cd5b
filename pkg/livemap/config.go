package livemap

import (
	"time"

	"github.com/travigo/fleettrack/pkg/util"
)

type Config struct {
	PollInterval    time.Duration
	FetchTimeout    time.Duration
	DefaultZoom     float64
	CameraAnimation time.Duration

	// MinBearingChange in degrees, smaller turns keep the previous icon rotation
	MinBearingChange float64
}

var defaultConfig = Config{
	PollInterval:    2 * time.Second,
	FetchTimeout:    5 * time.Second,
	DefaultZoom:     14,
	CameraAnimation: 800 * time.Millisecond,
}

// GetConfig returns the live map configuration from environment variables or defaults
func GetConfig() Config {
	env := util.GetEnvironmentVariables()

	return Config{
		PollInterval:    util.GetEnvDuration(env, "FLEETTRACK_POLL_INTERVAL", defaultConfig.PollInterval),
		FetchTimeout:    util.GetEnvDuration(env, "FLEETTRACK_FETCH_TIMEOUT", defaultConfig.FetchTimeout),
		DefaultZoom:     util.GetEnvFloat(env, "FLEETTRACK_DEFAULT_ZOOM", defaultConfig.DefaultZoom),
		CameraAnimation: util.GetEnvDuration(env, "FLEETTRACK_CAMERA_ANIMATION", defaultConfig.CameraAnimation),

		MinBearingChange: util.GetEnvFloat(env, "FLEETTRACK_MIN_BEARING_CHANGE", defaultConfig.MinBearingChange),
	}
}

// ForScreen applies the overrides a screen definition carries
func (c Config) ForScreen(screen ScreenDefinition) Config {
	if screen.PollInterval > 0 {
		c.PollInterval = screen.PollInterval
	}
	if screen.DefaultZoom > 0 {
		c.DefaultZoom = screen.DefaultZoom
	}
	return c
}
