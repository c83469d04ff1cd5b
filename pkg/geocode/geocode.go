package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/geo"
	"github.com/travigo/fleettrack/pkg/util"
)

const Placeholder = "Address unavailable"

// Geocoder never fails, any lookup problem resolves to Placeholder
type Geocoder interface {
	ReverseGeocode(ctx context.Context, point geo.Point) string
}

// Unavailable is used when no geocoder is configured
type Unavailable struct{}

func (Unavailable) ReverseGeocode(context.Context, geo.Point) string {
	return Placeholder
}

// Client does reverse lookups against a Nominatim compatible /reverse endpoint
type Client struct {
	URL        string
	HTTPClient *http.Client
	UserAgent  string
	Timeout    time.Duration

	cache *cache.Cache[string]
}

func NewClient(endpoint string) *Client {
	return &Client{
		URL:        endpoint,
		HTTPClient: &http.Client{},
		UserAgent:  "fleettrack/1.0",
		Timeout:    3 * time.Second,
	}
}

// NewFromEnvironment builds a geocoder from FLEETTRACK_GEOCODER_URL, caching
// results in redis when a client is available
func NewFromEnvironment(redisClient *redis.Client) Geocoder {
	env := util.GetEnvironmentVariables()

	if env["FLEETTRACK_GEOCODER_URL"] == "" {
		log.Info().Msg("Skipping geocoder setup")
		return Unavailable{}
	}

	client := NewClient(env["FLEETTRACK_GEOCODER_URL"])
	if redisClient != nil {
		client.WithCache(redisClient, util.GetEnvDuration(env, "FLEETTRACK_GEOCODER_CACHE_EXPIRY", 24*time.Hour))
	}

	return client
}

func (c *Client) WithCache(redisClient *redis.Client, expiration time.Duration) *Client {
	redisStore := redisstore.NewRedis(redisClient, store.WithExpiration(expiration))
	c.cache = cache.New[string](redisStore)

	return c
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

func (c *Client) ReverseGeocode(ctx context.Context, point geo.Point) string {
	// ~1m of precision is plenty for a street address
	cacheKey := fmt.Sprintf("fleettrack/geocode/%.5f,%.5f", point.Latitude, point.Longitude)

	if c.cache != nil {
		if address, err := c.cache.Get(ctx, cacheKey); err == nil && address != "" {
			return address
		}
	}

	address, err := c.lookup(ctx, point)
	if err != nil {
		log.Warn().Err(err).Str("point", point.String()).Msg("Reverse geocode failed")
		return Placeholder
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, address); err != nil {
			log.Error().Err(err).Msg("Failed to cache address")
		}
	}

	return address
}

func (c *Client) lookup(ctx context.Context, point geo.Point) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	query := url.Values{}
	query.Set("format", "json")
	query.Set("lat", util.FormatCoordinate(point.Latitude))
	query.Set("lon", util.FormatCoordinate(point.Longitude))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.URL, query.Encode()), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var response reverseResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}

	address := strings.TrimSpace(response.DisplayName)
	if address == "" {
		return "", fmt.Errorf("no address for %s", point)
	}

	return address, nil
}
