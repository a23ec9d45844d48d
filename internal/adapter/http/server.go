// Package http exposes health, readiness, and metrics endpoints plus the
// REST facade the view layer consumes: the cached dataset, derived per-date
// groupings, and the shared viewport.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/site-view-service/internal/domain"
	"github.com/couchcryptid/site-view-service/internal/resource"
	"github.com/couchcryptid/site-view-service/internal/viewindex"
	"github.com/couchcryptid/site-view-service/internal/viewport"
)

// ShareLocation renders the current shareable URL.
type ShareLocation interface {
	URL() string
}

// API bundles the core components the facade serves.
type API struct {
	Dataset  *resource.Swap[domain.Dataset]
	Index    *viewindex.Cache
	Viewport *viewport.Controller
	Share    ShareLocation
}

// Server exposes the service over HTTP.
type Server struct {
	httpServer *http.Server
	api        *API
	logger     *slog.Logger
}

// NewServer creates an HTTP server with health, metrics, and /api routes.
func NewServer(addr string, api *API, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		api:    api,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/sites", s.handleSites)
	mux.HandleFunc("POST /api/sites/refresh", s.handleSitesRefresh)
	mux.HandleFunc("GET /api/index", s.handleIndex)
	mux.HandleFunc("GET /api/viewport", s.handleViewportGet)
	mux.HandleFunc("PUT /api/viewport", s.handleViewportPut)
	mux.HandleFunc("PUT /api/viewport/mode", s.handleViewportMode)
	mux.HandleFunc("GET /api/viewport/fit", s.handleViewportFit)
	mux.HandleFunc("GET /api/share", s.handleShare)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReady reports ready once the dataset resource has resolved. A
// pending or failed fetch keeps the service out of rotation without killing
// it; a refresh can bring it back.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	_, err, settled := s.api.Dataset.Current().Poll()
	switch {
	case !settled:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "dataset fetch has not resolved yet",
		})
	case err != nil:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleSites reads the dataset through the single-flight cache. The request
// waits for an in-flight fetch (the suspension analog); a cached failure is
// re-surfaced on every read until an explicit refresh.
func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	ds, err := s.api.Dataset.Current().Get(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// handleSitesRefresh swaps in a fresh cache instance and warms it. This is
// the retry affordance for a failed fetch; it is also the only way to pick
// up new upstream data within a process lifetime.
func (s *Server) handleSitesRefresh(w http.ResponseWriter, _ *http.Request) {
	res := s.api.Dataset.Refresh()
	go func() {
		if _, err := res.Get(context.Background()); err != nil {
			s.logger.Error("dataset refresh failed", "error", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

// handleIndex serves per-date site groupings for a metric selection:
// GET /api/index?metric=1&dates=2024-06-01,2024-06-02
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	metricIndex, err := strconv.Atoi(r.URL.Query().Get("metric"))
	if err != nil || metricIndex < 0 || metricIndex >= len(domain.Metrics) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "metric must be a valid catalog index"})
		return
	}

	datesParam := r.URL.Query().Get("dates")
	if datesParam == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dates is required"})
		return
	}
	dates := strings.Split(datesParam, ",")

	ds, err := s.api.Dataset.Current().Get(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	idx := s.api.Index.Get(ds, metricIndex, dates)

	groups := make(map[string][]string, len(idx))
	for date, sites := range idx {
		ids := make([]string, 0, len(sites))
		for _, site := range sites {
			ids = append(ids, site.ID)
		}
		groups[date] = ids
	}

	writeJSON(w, http.StatusOK, indexResponse{
		Metric: domain.Metrics[metricIndex],
		Groups: groups,
	})
}

func (s *Server) handleViewportGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, viewportResponse{
		Viewport: s.api.Viewport.Viewport(),
		Mode:     s.api.Viewport.DisplayMode(),
	})
}

// handleViewportPut is the primary view's write path. Subordinate views must
// never call it; they read broadcasts and request fits.
func (s *Server) handleViewportPut(w http.ResponseWriter, r *http.Request) {
	var v domain.Viewport
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed viewport"})
		return
	}
	if v.Center.Lat < -90 || v.Center.Lat > 90 || v.Center.Lon < -180 || v.Center.Lon > 180 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "center out of range"})
		return
	}

	s.api.Viewport.SetViewport(v)
	writeJSON(w, http.StatusOK, viewportResponse{
		Viewport: s.api.Viewport.Viewport(),
		Mode:     s.api.Viewport.DisplayMode(),
	})
}

func (s *Server) handleViewportMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed mode"})
		return
	}
	s.api.Viewport.SetDisplayMode(body.Mode)
	writeJSON(w, http.StatusOK, map[string]string{"mode": body.Mode})
}

// handleViewportFit computes aspect-preserving padding for a subordinate
// container: GET /api/viewport/fit?north=..&south=..&east=..&west=..&w=..&h=..
func (s *Server) handleViewportFit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	parse := func(key string) (float64, bool) {
		f, err := strconv.ParseFloat(q.Get(key), 64)
		return f, err == nil
	}

	north, ok1 := parse("north")
	south, ok2 := parse("south")
	east, ok3 := parse("east")
	west, ok4 := parse("west")
	width, ok5 := parse("w")
	height, ok6 := parse("h")
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "north, south, east, west, w, h are required numbers"})
		return
	}

	b := domain.Bounds{North: north, South: south, East: east, West: west}
	padX, padY, ok := s.api.Viewport.FitSubordinate(b, width, height)

	writeJSON(w, http.StatusOK, fitResponse{PadX: padX, PadY: padY, OK: ok})
}

func (s *Server) handleShare(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"url": s.api.Share.URL()})
}

// Facade response types.

type indexResponse struct {
	Metric string              `json:"metric"`
	Groups map[string][]string `json:"groups"`
}

type viewportResponse struct {
	Viewport domain.Viewport `json:"viewport"`
	Mode     string          `json:"mode,omitempty"`
}

type fitResponse struct {
	PadX float64 `json:"pad_x"`
	PadY float64 `json:"pad_y"`
	OK   bool    `json:"ok"` // false means degenerate geometry, skip the fit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
