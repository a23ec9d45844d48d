package domain

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is a geographic rectangle. North > South and East > West for a
// non-degenerate rectangle; antimeridian-crossing rectangles are not used by
// this service.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Width is the longitudinal span in degrees.
func (b Bounds) Width() float64 { return b.East - b.West }

// Height is the latitudinal span in degrees.
func (b Bounds) Height() float64 { return b.North - b.South }

// Degenerate reports whether the rectangle has no usable area.
func (b Bounds) Degenerate() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Zoom levels follow the web-mercator tile convention.
const (
	MinZoom = 0
	MaxZoom = 22
)

// ClampZoom forces a zoom level into the valid range.
func ClampZoom(z int) int {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// Viewport is the state of one map view: center, zoom, and optionally the
// visible region. The viewport controller owns the authoritative instance;
// everything else receives copies.
type Viewport struct {
	Center Geo     `json:"center"`
	Zoom   int     `json:"zoom"`
	Bounds *Bounds `json:"bounds,omitempty"`
}
