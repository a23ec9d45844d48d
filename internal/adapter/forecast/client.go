// Package forecast implements the dataset producer over the forecast REST
// API. One FetchSites call resolves the complete site list with embedded
// predictions; the resource cache guarantees it runs at most once per cache
// lifetime.
package forecast

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/site-view-service/internal/domain"
	"github.com/couchcryptid/site-view-service/internal/observability"
)

// Client fetches the site dataset from the forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a forecast API client.
func NewClient(baseURL string, timeout time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchSites retrieves, validates, and versions the full dataset. The
// resolved dataset is immutable from here on; Version is the SHA-256 of the
// raw payload so derived caches can key on content identity.
func (c *Client) FetchSites(ctx context.Context) (domain.Dataset, error) {
	start := c.clock.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/sites", nil)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.DatasetFetches.WithLabelValues("error").Inc()
		return domain.Dataset{}, fmt.Errorf("fetch sites: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.DatasetFetches.WithLabelValues("error").Inc()
		return domain.Dataset{}, fmt.Errorf("forecast API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.DatasetFetches.WithLabelValues("error").Inc()
		return domain.Dataset{}, fmt.Errorf("read response: %w", err)
	}

	var payload response
	if err := json.Unmarshal(body, &payload); err != nil {
		c.metrics.DatasetFetches.WithLabelValues("error").Inc()
		return domain.Dataset{}, fmt.Errorf("decode response: %w", err)
	}

	sum := sha256.Sum256(body)
	dataset := domain.Dataset{
		Sites:     payload.Sites,
		Version:   hex.EncodeToString(sum[:]),
		FetchedAt: c.clock.Now().UTC(),
	}

	if err := domain.ValidateDataset(dataset); err != nil {
		c.metrics.DatasetFetches.WithLabelValues("error").Inc()
		return domain.Dataset{}, fmt.Errorf("invalid dataset: %w", err)
	}

	c.metrics.DatasetFetches.WithLabelValues("success").Inc()
	c.metrics.DatasetFetchDuration.Observe(c.clock.Since(start).Seconds())
	c.metrics.DatasetSites.Set(float64(len(dataset.Sites)))
	c.logger.Info("dataset fetched",
		"sites", len(dataset.Sites), "version", dataset.Version[:12], "duration", c.clock.Since(start))

	return dataset, nil
}

// Forecast API response types.

type response struct {
	Sites []domain.Site `json:"sites"`
}
