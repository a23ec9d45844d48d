// Package viewport owns the authoritative map viewport for the primary
// interactive view: it seeds the initial viewport, broadcasts mutations to
// subordinate views, persists state to the shareable location with a trailing
// debounce, and computes aspect-preserving fit transforms.
package viewport

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/site-view-service/internal/domain"
	"github.com/couchcryptid/site-view-service/internal/observability"
)

// LocationState is the decoded shareable-location payload. Nil Center or
// Zoom means the field is absent (or was malformed and is treated as
// absent). An empty Mode means no display-mode flag.
type LocationState struct {
	Center *domain.Geo
	Zoom   *int
	Mode   string
}

// LocationStore reads and writes the shareable location (the address bar in
// the browser rendition). Merge writes only the fields carried by the state
// and must not clobber unrelated keys already present at the location.
type LocationStore interface {
	Read() LocationState
	Merge(LocationState)
}

// Geolocator resolves the device position once. Consumed with a bounded
// timeout during seeding; failure is never surfaced.
type Geolocator interface {
	Locate(ctx context.Context) (domain.Geo, error)
}

// Config carries the controller's tunables.
type Config struct {
	Default          domain.Viewport
	PersistDebounce  time.Duration
	GeolocateTimeout time.Duration
}

// Controller manages one authoritative viewport. The primary view is the
// sole writer; subordinate views subscribe for broadcasts and request
// fit-to-bounds transforms against the most recent state.
type Controller struct {
	store   LocationStore
	locator Geolocator
	clock   clockwork.Clock
	cfg     Config
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	state   domain.Viewport
	mode    string
	subs    map[int]func(domain.Viewport)
	nextSub int
	timer   clockwork.Timer
	closed  bool
}

// New creates a Controller holding the static default viewport. Call Seed to
// run the initialization chain before the first render. locator may be nil
// when no geolocation provider is available.
func New(store LocationStore, locator Geolocator, cfg Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		store:   store,
		locator: locator,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		state:   cfg.Default,
		subs:    make(map[int]func(domain.Viewport)),
	}
}

// Seed runs the initialization chain, first success wins:
//
//  1. center+zoom decoded from the shareable location (both must be valid);
//  2. device geolocation with a bounded timeout, applied to center only,
//     keeping the default zoom;
//  3. the static default, already in place.
//
// Geolocation failure or denial falls through silently. Seed never fails and
// does not broadcast or persist; it runs before the first mutation.
func (c *Controller) Seed(ctx context.Context) {
	loc := c.store.Read()

	c.mu.Lock()
	if loc.Mode != "" {
		c.mode = loc.Mode
	}
	if loc.Center != nil && loc.Zoom != nil {
		c.state.Center = *loc.Center
		c.state.Zoom = domain.ClampZoom(*loc.Zoom)
		c.mu.Unlock()
		c.logger.Debug("viewport seeded from shared location",
			"lat", loc.Center.Lat, "lon", loc.Center.Lon, "zoom", c.state.Zoom)
		return
	}
	c.mu.Unlock()

	if c.locator == nil {
		c.logger.Debug("viewport seeded from static default")
		return
	}

	locateCtx, cancel := context.WithTimeout(ctx, c.cfg.GeolocateTimeout)
	defer cancel()

	geo, err := c.locator.Locate(locateCtx)
	if err != nil {
		c.metrics.GeolocateRequests.WithLabelValues("error").Inc()
		c.logger.Debug("geolocation unavailable, keeping default viewport", "error", err)
		return
	}
	c.metrics.GeolocateRequests.WithLabelValues("success").Inc()

	c.mu.Lock()
	c.state.Center = geo
	c.mu.Unlock()
	c.logger.Debug("viewport seeded from geolocation", "lat", geo.Lat, "lon", geo.Lon)
}

// SetViewport applies a primary-view mutation: updates the state, broadcasts
// it synchronously to all subscribers, and schedules a debounced persist.
// No-op after Close.
func (c *Controller) SetViewport(v domain.Viewport) {
	v.Zoom = domain.ClampZoom(v.Zoom)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = v
	subs := make([]func(domain.Viewport), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.schedulePersistLocked()
	c.mu.Unlock()

	c.metrics.ViewportUpdates.Inc()
	for _, fn := range subs {
		fn(v)
	}
}

// SetDisplayMode updates the auxiliary display-mode flag and schedules it
// for persistence on the same debounced timer.
func (c *Controller) SetDisplayMode(mode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.mode = mode
	c.schedulePersistLocked()
}

// Viewport returns the current authoritative state.
func (c *Controller) Viewport() domain.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// DisplayMode returns the auxiliary display-mode flag.
func (c *Controller) DisplayMode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Subscribe registers a subordinate view for synchronous viewport
// broadcasts. The returned func cancels the subscription. Subscribers are
// readers only; they must not call SetViewport.
func (c *Controller) Subscribe(fn func(domain.Viewport)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// FitSubordinate computes the aspect-preserving padding for fitting a
// geographic rectangle into a subordinate view's pixel container. Degenerate
// geometry skips the fit (ok=false) and is counted, never surfaced.
func (c *Controller) FitSubordinate(b domain.Bounds, width, height float64) (padX, padY float64, ok bool) {
	padX, padY, ok = FitPadding(b, width, height)
	if !ok {
		c.metrics.FitSkips.Inc()
		c.logger.Debug("skipping fit for degenerate geometry",
			"bounds_w", b.Width(), "bounds_h", b.Height(), "container_w", width, "container_h", height)
	}
	return padX, padY, ok
}

// Close tears the controller down: any pending debounced persist is
// cancelled and never fires, and further mutations are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.subs = nil
}

// schedulePersistLocked restarts the trailing-edge debounce timer. Callers
// hold c.mu. Each mutation within the window pushes the write out; the write
// that eventually fires carries the state of the last mutation.
func (c *Controller) schedulePersistLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.clock.AfterFunc(c.cfg.PersistDebounce, c.persist)
}

// persist writes the current center/zoom and display-mode flag to the
// shareable location. Runs on the debounce timer.
func (c *Controller) persist() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	state := c.state
	mode := c.mode
	c.mu.Unlock()

	zoom := state.Zoom
	c.store.Merge(LocationState{Center: &state.Center, Zoom: &zoom, Mode: mode})
	c.metrics.ViewportPersists.Inc()
	c.logger.Debug("viewport persisted",
		"lat", state.Center.Lat, "lon", state.Center.Lon, "zoom", zoom, "mode", mode)
}
