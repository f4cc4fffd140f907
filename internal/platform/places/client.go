// Package places looks up nearby cardiology providers through an external
// geo search API. Lookups are idempotent, so transient failures are retried
// with exponential backoff.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Provider is one care facility near the requested point.
type Provider struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	DistanceM float64 `json:"distance_m"`
	Phone     string  `json:"phone,omitempty"`
}

// HTTPStatusError reports a non-200 answer from the places API.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return "places api: non-200 status code: " + http.StatusText(e.StatusCode)
}

// Temporary reports whether the status is worth retrying.
func (e *HTTPStatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxElapsed time.Duration
	logger     zerolog.Logger
}

type ClientOptions struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxElapsed time.Duration
}

func NewClient(opts ClientOptions, logger zerolog.Logger) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxElapsed == 0 {
		opts.MaxElapsed = 15 * time.Second
	}
	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		maxElapsed: opts.MaxElapsed,
		logger:     logger,
	}
}

// Nearby returns providers around the given coordinates, closest first.
func (c *Client) Nearby(ctx context.Context, lat, lng float64, radiusM int) ([]Provider, error) {
	if radiusM <= 0 {
		radiusM = 10000
	}

	endpoint, err := url.Parse(c.baseURL + "/v1/search")
	if err != nil {
		return nil, fmt.Errorf("places: bad base url: %w", err)
	}
	q := endpoint.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', 6, 64))
	q.Set("radius", strconv.Itoa(radiusM))
	q.Set("category", "cardiology")
	endpoint.RawQuery = q.Encode()

	var providers []Provider
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
			if !statusErr.Temporary() {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}

		var payload struct {
			Results []Provider `json:"results"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return backoff.Permanent(fmt.Errorf("places: decode response: %w", err))
		}
		providers = payload.Results
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		c.logger.Warn().Err(err).Msg("places lookup failed")
		return nil, err
	}
	return providers, nil
}
