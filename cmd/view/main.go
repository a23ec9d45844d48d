package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/site-view-service/internal/adapter/forecast"
	"github.com/couchcryptid/site-view-service/internal/adapter/geoip"
	httpadapter "github.com/couchcryptid/site-view-service/internal/adapter/http"
	"github.com/couchcryptid/site-view-service/internal/adapter/urlstate"
	"github.com/couchcryptid/site-view-service/internal/config"
	"github.com/couchcryptid/site-view-service/internal/observability"
	"github.com/couchcryptid/site-view-service/internal/resource"
	"github.com/couchcryptid/site-view-service/internal/viewindex"
	"github.com/couchcryptid/site-view-service/internal/viewport"
)

func main() {
	// Load .env if present; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	forecastClient := forecast.NewClient(cfg.ForecastAPIURL, cfg.ForecastTimeout, clock, logger, metrics)
	dataset := resource.NewSwap(forecastClient.FetchSites)

	indexCache, err := viewindex.NewCache(cfg.IndexCacheSize, metrics)
	if err != nil {
		logger.Error("failed to create index cache", "error", err)
		os.Exit(1)
	}

	share, err := urlstate.NewStore(cfg.ShareURL, logger)
	if err != nil {
		logger.Error("failed to create share location store", "error", err)
		os.Exit(1)
	}

	// Geolocation seeding is feature-flagged via GEOLOCATE_ENABLED.
	var locator viewport.Geolocator
	if cfg.GeolocateEnabled {
		locator = geoip.NewClient(cfg.GeolocateURL, cfg.GeolocateTimeout, logger)
		logger.Info("geolocation seeding enabled", "url", cfg.GeolocateURL, "timeout", cfg.GeolocateTimeout)
	} else {
		logger.Info("geolocation seeding disabled")
	}

	ctrl := viewport.New(share, locator, viewport.Config{
		Default:          cfg.DefaultViewport,
		PersistDebounce:  cfg.PersistDebounce,
		GeolocateTimeout: cfg.GeolocateTimeout,
	}, clock, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl.Seed(ctx)

	// Warm the dataset cache so the first view does not pay the fetch.
	go func() {
		if _, err := dataset.Current().Get(ctx); err != nil && ctx.Err() == nil {
			logger.Error("initial dataset fetch failed", "error", err)
		}
	}()

	srv := httpadapter.NewServer(cfg.HTTPAddr, &httpadapter.API{
		Dataset:  dataset,
		Index:    indexCache,
		Viewport: ctrl,
		Share:    share,
	}, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	ctrl.Close()

	logger.Info("shutdown complete")
}
