package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/ctdf"
)

const defaultUserAgent = "fleettrack/1.0"
const defaultRequestTimeout = 30 * time.Second

// HTTPClient talks to the tracking backend's JSON API
type HTTPClient struct {
	BaseURL   string
	Client    *http.Client
	UserAgent string

	MaxRetries    uint64
	RetryInterval time.Duration
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL:   baseURL,
		Client:    &http.Client{Timeout: defaultRequestTimeout},
		UserAgent: defaultUserAgent,

		MaxRetries:    3,
		RetryInterval: 500 * time.Millisecond,
	}
}

// FetchLive makes a single request, the poll loop retries on its next cycle
func (c *HTTPClient) FetchLive(ctx context.Context) ([]ctdf.VehicleSnapshot, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/vehicles/live", c.BaseURL))
	if err != nil {
		return nil, err
	}

	var snapshots []ctdf.VehicleSnapshot
	if err := decodeList(body, &snapshots); err != nil {
		return nil, fmt.Errorf("decoding live vehicles: %w", err)
	}

	return snapshots, nil
}

func (c *HTTPClient) FetchTrack(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error) {
	query := url.Values{}
	if window.From != nil {
		query.Set("from", window.From.UTC().Format(time.RFC3339))
	}
	if window.To != nil {
		query.Set("to", window.To.UTC().Format(time.RFC3339))
	}

	requestURL := fmt.Sprintf("%s/vehicles/%s/track", c.BaseURL, url.PathEscape(deviceID))
	if len(query) > 0 {
		requestURL = fmt.Sprintf("%s?%s", requestURL, query.Encode())
	}

	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = c.RetryInterval
	retryBackoff := backoff.WithContext(backoff.WithMaxRetries(exponentialBackoff, c.MaxRetries), ctx)

	body, err := backoff.RetryNotifyWithData(func() ([]byte, error) {
		body, err := c.get(ctx, requestURL)

		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < 500 && statusErr.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}

		return body, err
	}, retryBackoff, func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("device", deviceID).Str("wait", wait.String()).Msg("Retrying track fetch")
	})
	if err != nil {
		return nil, err
	}

	var records []ctdf.TrackRecord
	if err := decodeList(body, &records); err != nil {
		return nil, fmt.Errorf("decoding track for %s: %w", deviceID, err)
	}

	return records, nil
}

func (c *HTTPClient) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: requestURL, StatusCode: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}

// decodeList treats an absent body or a JSON null as an empty list
func decodeList[T any](body []byte, list *[]T) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*list = []T{}
		return nil
	}

	return json.Unmarshal(trimmed, list)
}

type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
