// Package urlstate implements the shareable-location codec and store over
// URL query parameters. In the browser this is the address bar; here the
// store keeps the authoritative shareable URL in memory and the HTTP facade
// serves it so a user can copy a link that reproduces their viewport.
package urlstate

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/couchcryptid/site-view-service/internal/domain"
	"github.com/couchcryptid/site-view-service/internal/viewport"
)

// Managed query parameter keys. Everything else at the location belongs to
// other features and is never touched by a merge.
const (
	keyLat  = "lat"
	keyLon  = "lon"
	keyZoom = "z"
	keyMode = "mode"
)

// Decode extracts the viewport fields from query values. Malformed numerics
// are treated as absent, falling through the seeding chain; they are never an
// error. Center requires both lat and lon to decode.
func Decode(q url.Values) viewport.LocationState {
	var st viewport.LocationState

	lat, latErr := strconv.ParseFloat(q.Get(keyLat), 64)
	lon, lonErr := strconv.ParseFloat(q.Get(keyLon), 64)
	if latErr == nil && lonErr == nil {
		st.Center = &domain.Geo{Lat: lat, Lon: lon}
	}

	if z, err := strconv.Atoi(q.Get(keyZoom)); err == nil {
		z = domain.ClampZoom(z)
		st.Zoom = &z
	}

	st.Mode = q.Get(keyMode)
	return st
}

// Encode writes the carried fields of st into q, leaving all other keys
// untouched. Absent fields do not clear previously written ones: a persist
// always carries the full center/zoom payload anyway.
func Encode(st viewport.LocationState, q url.Values) {
	if st.Center != nil {
		q.Set(keyLat, strconv.FormatFloat(st.Center.Lat, 'f', 5, 64))
		q.Set(keyLon, strconv.FormatFloat(st.Center.Lon, 'f', 5, 64))
	}
	if st.Zoom != nil {
		q.Set(keyZoom, strconv.Itoa(*st.Zoom))
	}
	if st.Mode != "" {
		q.Set(keyMode, st.Mode)
	}
}

// Store holds the authoritative shareable URL. It implements
// viewport.LocationStore.
type Store struct {
	logger *slog.Logger

	mu sync.Mutex
	u  *url.URL
}

// NewStore parses the initial shareable URL (typically the configured public
// base URL, possibly already carrying state from a shared link).
func NewStore(raw string, logger *slog.Logger) (*Store, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse share URL: %w", err)
	}
	return &Store{u: u, logger: logger}, nil
}

// Read decodes the currently persisted viewport fields.
func (s *Store) Read() viewport.LocationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Decode(s.u.Query())
}

// Merge writes the carried viewport fields into the shareable URL without
// clobbering unrelated query parameters.
func (s *Store) Merge(st viewport.LocationState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.u.Query()
	Encode(st, q)
	s.u.RawQuery = q.Encode()
	s.logger.Debug("share location updated", "query", s.u.RawQuery)
}

// URL renders the current shareable URL.
func (s *Store) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.u.String()
}
