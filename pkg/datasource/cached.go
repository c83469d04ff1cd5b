package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/ctdf"
)

// CachedTrackSource keeps fetched tracks in redis. Only closed windows are cached,
// a window without an end keeps growing and is always fetched.
type CachedTrackSource struct {
	Source TrackSource
	Cache  *cache.Cache[string]
}

func NewCachedTrackSource(source TrackSource, client *redis.Client, expiration time.Duration) *CachedTrackSource {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &CachedTrackSource{
		Source: source,
		Cache:  cache.New[string](redisStore),
	}
}

func (c *CachedTrackSource) FetchTrack(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error) {
	if window.To == nil || window.To.After(time.Now()) {
		return c.Source.FetchTrack(ctx, deviceID, window)
	}

	cacheKey := fmt.Sprintf("fleettrack/track/%s/%s", deviceID, window.String())

	if cached, err := c.Cache.Get(ctx, cacheKey); err == nil {
		var records []ctdf.TrackRecord
		if err := json.Unmarshal([]byte(cached), &records); err == nil {
			return records, nil
		}
	}

	records, err := c.Source.FetchTrack(ctx, deviceID, window)
	if err != nil {
		return nil, err
	}

	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return records, nil
	}

	if err := c.Cache.Set(ctx, cacheKey, string(recordsJSON)); err != nil {
		log.Error().Err(err).Str("device", deviceID).Msg("Failed to cache track")
	}

	return records, nil
}
