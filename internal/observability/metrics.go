package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the view
// service.
type Metrics struct {
	// Dataset resource metrics.
	DatasetFetches       *prometheus.CounterVec // labels: outcome={success,error}
	DatasetFetchDuration prometheus.Histogram
	DatasetSites         prometheus.Gauge

	// Derived index metrics.
	IndexBuilds prometheus.Counter
	IndexCache  *prometheus.CounterVec // labels: result={hit,miss}

	// Viewport metrics.
	ViewportUpdates  prometheus.Counter
	ViewportPersists prometheus.Counter
	FitSkips         prometheus.Counter

	// Geolocation metrics.
	GeolocateRequests *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "site_view",
			Name:      "dataset_fetches_total",
			Help:      "Dataset producer invocations by outcome.",
		}, []string{"outcome"}),
		DatasetFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "site_view",
			Name:      "dataset_fetch_duration_seconds",
			Help:      "Duration of a full dataset fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		DatasetSites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "site_view",
			Name:      "dataset_sites",
			Help:      "Number of sites in the most recently resolved dataset.",
		}),
		IndexBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "site_view",
			Name:      "index_builds_total",
			Help:      "Derived view index rebuilds.",
		}),
		IndexCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "site_view",
			Name:      "index_cache_total",
			Help:      "Derived view index cache lookups by result.",
		}, []string{"result"}),
		ViewportUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "site_view",
			Name:      "viewport_updates_total",
			Help:      "Primary-view viewport mutations.",
		}),
		ViewportPersists: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "site_view",
			Name:      "viewport_persists_total",
			Help:      "Debounced viewport writes to the shareable location.",
		}),
		FitSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "site_view",
			Name:      "fit_skips_total",
			Help:      "Fit-to-bounds computations skipped due to degenerate geometry.",
		}),
		GeolocateRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "site_view",
			Name:      "geolocate_requests_total",
			Help:      "Geolocation provider requests by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.DatasetFetches,
		m.DatasetFetchDuration,
		m.DatasetSites,
		m.IndexBuilds,
		m.IndexCache,
		m.ViewportUpdates,
		m.ViewportPersists,
		m.FitSkips,
		m.GeolocateRequests,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetFetches:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "site_view", Name: "dataset_fetches_total"}, []string{"outcome"}),
		DatasetFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "site_view", Name: "dataset_fetch_duration_seconds"}),
		DatasetSites:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "site_view", Name: "dataset_sites"}),
		IndexBuilds:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "site_view", Name: "index_builds_total"}),
		IndexCache:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "site_view", Name: "index_cache_total"}, []string{"result"}),
		ViewportUpdates:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "site_view", Name: "viewport_updates_total"}),
		ViewportPersists:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "site_view", Name: "viewport_persists_total"}),
		FitSkips:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "site_view", Name: "fit_skips_total"}),
		GeolocateRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "site_view", Name: "geolocate_requests_total"}, []string{"outcome"}),
	}
}
