package viewindex

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/site-view-service/internal/domain"
	"github.com/couchcryptid/site-view-service/internal/observability"
)

// Cache memoizes Build results keyed on dataset version, metric selection,
// and the requested date set, so flipping between recent selections does not
// rescan the dataset. A changed dataset version, metric, or date set misses
// and rebuilds; entries for stale dataset versions age out of the LRU.
type Cache struct {
	cache   *lru.Cache[string, Index]
	metrics *observability.Metrics
}

// NewCache creates a Cache holding up to maxEntries memoized indexes.
func NewCache(maxEntries int, metrics *observability.Metrics) (*Cache, error) {
	c, err := lru.New[string, Index](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create index cache: %w", err)
	}
	return &Cache{cache: c, metrics: metrics}, nil
}

// Get returns the memoized index for the selection, building it on a miss.
// The returned Index is shared across callers and must not be mutated.
func (c *Cache) Get(dataset domain.Dataset, metricIndex int, dates []string) Index {
	key := cacheKey(dataset.Version, metricIndex, dates)
	if idx, ok := c.cache.Get(key); ok {
		c.metrics.IndexCache.WithLabelValues("hit").Inc()
		return idx
	}
	c.metrics.IndexCache.WithLabelValues("miss").Inc()
	c.metrics.IndexBuilds.Inc()

	idx := Build(dataset.Sites, metricIndex, dates)
	c.cache.Add(key, idx)
	return idx
}

// cacheKey is deterministic for a given selection. Dates keep their given
// order: a reordered date set is a different selection to the caller anyway.
func cacheKey(version string, metricIndex int, dates []string) string {
	return fmt.Sprintf("%s|%d|%s", version, metricIndex, strings.Join(dates, ","))
}
