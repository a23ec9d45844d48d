// Package geoip implements the geolocation provider over an ip-api style
// endpoint. The viewport controller consumes it with a bounded timeout
// during seeding and silently falls back when it fails.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/site-view-service/internal/domain"
)

// Client performs one-shot IP geolocation lookups.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a geolocation client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Locate resolves the caller's approximate position. It implements
// viewport.Geolocator.
func (c *Client) Locate(ctx context.Context) (domain.Geo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json", nil)
	if err != nil {
		return domain.Geo{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Geo{}, fmt.Errorf("geolocate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Geo{}, fmt.Errorf("geolocation API error: status %d: %s", resp.StatusCode, body)
	}

	var geoResp response
	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return domain.Geo{}, fmt.Errorf("decode response: %w", err)
	}

	if geoResp.Status != "success" {
		return domain.Geo{}, fmt.Errorf("geolocation failed: %s", geoResp.Message)
	}

	return domain.Geo{Lat: geoResp.Lat, Lon: geoResp.Lon}, nil
}

// Geolocation API response types (ip-api.com JSON shape).

type response struct {
	Status  string  `json:"status"` // "success" or "fail"
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
