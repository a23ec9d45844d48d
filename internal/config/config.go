package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/site-view-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Forecast API (dataset producer) configuration.
	ForecastAPIURL  string
	ForecastTimeout time.Duration

	// Geolocation provider configuration.
	GeolocateURL     string
	GeolocateEnabled bool
	GeolocateTimeout time.Duration

	// Viewport configuration.
	ShareURL        string
	PersistDebounce time.Duration
	DefaultViewport domain.Viewport

	// Derived index cache configuration.
	IndexCacheSize int
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	forecastTimeout, err := parseDuration("FORECAST_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geolocateTimeout, err := parseDuration("GEOLOCATE_TIMEOUT", "2s")
	if err != nil {
		return nil, err
	}
	persistDebounce, err := parseDuration("PERSIST_DEBOUNCE", "1s")
	if err != nil {
		return nil, err
	}

	defaultViewport, err := parseDefaultViewport()
	if err != nil {
		return nil, err
	}

	indexCacheSize, err := parseInt("INDEX_CACHE_SIZE", 64, 1)
	if err != nil {
		return nil, err
	}

	geolocateEnabled := true
	if v := os.Getenv("GEOLOCATE_ENABLED"); v != "" {
		geolocateEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ForecastAPIURL:  envOrDefault("FORECAST_API_URL", "http://localhost:8081"),
		ForecastTimeout: forecastTimeout,

		GeolocateURL:     envOrDefault("GEOLOCATE_URL", "http://ip-api.com"),
		GeolocateEnabled: geolocateEnabled,
		GeolocateTimeout: geolocateTimeout,

		ShareURL:        envOrDefault("SHARE_URL", "http://localhost:8080/map"),
		PersistDebounce: persistDebounce,
		DefaultViewport: defaultViewport,

		IndexCacheSize: indexCacheSize,
	}

	if cfg.ForecastAPIURL == "" {
		return nil, errors.New("FORECAST_API_URL is required")
	}
	if cfg.GeolocateEnabled && cfg.GeolocateURL == "" {
		return nil, errors.New("GEOLOCATE_ENABLED is true but GEOLOCATE_URL is not set")
	}

	return cfg, nil
}

// parseDefaultViewport reads the static fallback viewport. The shipped
// default centers on the continental US at a country-level zoom.
func parseDefaultViewport() (domain.Viewport, error) {
	lat, err := parseFloat("DEFAULT_LAT", 39.0)
	if err != nil {
		return domain.Viewport{}, err
	}
	lon, err := parseFloat("DEFAULT_LON", -98.5)
	if err != nil {
		return domain.Viewport{}, err
	}
	zoom, err := parseInt("DEFAULT_ZOOM", 4, 0)
	if err != nil {
		return domain.Viewport{}, err
	}

	if lat < -90 || lat > 90 {
		return domain.Viewport{}, errors.New("DEFAULT_LAT out of range")
	}
	if lon < -180 || lon > 180 {
		return domain.Viewport{}, errors.New("DEFAULT_LON out of range")
	}

	return domain.Viewport{
		Center: domain.Geo{Lat: lat, Lon: lon},
		Zoom:   domain.ClampZoom(zoom),
	}, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def, min int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}
