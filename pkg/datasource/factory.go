package datasource

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/travigo/fleettrack/pkg/database"
	"github.com/travigo/fleettrack/pkg/util"
)

const (
	TrackSourceHTTP  = "http"
	TrackSourceMongo = "mongo"
	TrackSourceCSV   = "csv"
)

// NewTrackSource builds the playback feed named by kind. location is the base
// URL for http and the file path for csv, mongo uses the database connection.
func NewTrackSource(kind string, location string) (TrackSource, error) {
	switch kind {
	case TrackSourceHTTP:
		if location == "" {
			return nil, fmt.Errorf("http track source needs a base URL")
		}
		return NewHTTPClient(location), nil
	case TrackSourceMongo:
		if err := database.Connect(); err != nil {
			return nil, fmt.Errorf("connecting to mongodb: %w", err)
		}
		return NewMongoTrackSource(), nil
	case TrackSourceCSV:
		if location == "" {
			return nil, fmt.Errorf("csv track source needs a file path")
		}
		return &CSVTrackSource{Path: location}, nil
	default:
		return nil, fmt.Errorf("unknown track source %q", kind)
	}
}

// WithCache wraps the source in a redis cache when a client is available
func WithCache(source TrackSource, client *redis.Client) TrackSource {
	if client == nil {
		return source
	}

	env := util.GetEnvironmentVariables()
	expiration := util.GetEnvDuration(env, "FLEETTRACK_TRACK_CACHE_EXPIRY", 30*time.Minute)

	return NewCachedTrackSource(source, client, expiration)
}
