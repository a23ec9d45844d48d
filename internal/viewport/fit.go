package viewport

import "github.com/couchcryptid/site-view-service/internal/domain"

// FitPadding computes symmetric padding, in container pixels, so that fitting
// the rectangle into a width×height container preserves the rectangle's
// aspect ratio. A naive fit stretches whichever axis the container has to
// spare; padding the slack axis makes the effective container aspect match
// the bounds aspect instead.
//
// When the bounds are wider than the container (relative to their heights),
// the width-limited fit leaves vertical slack, so the vertical axis is padded
// top and bottom; otherwise the horizontal axis is padded left and right.
// Equal aspects need no padding.
//
// Degenerate input (zero-sized rectangle or container) returns ok=false and
// the fit must be skipped, leaving the view at its last valid viewport.
func FitPadding(b domain.Bounds, width, height float64) (padX, padY float64, ok bool) {
	if b.Degenerate() || width <= 0 || height <= 0 {
		return 0, 0, false
	}

	boundsAspect := b.Width() / b.Height()
	containerAspect := width / height

	if boundsAspect > containerAspect {
		padY = (height - width/boundsAspect) / 2
	} else {
		padX = (width - height*boundsAspect) / 2
	}
	return padX, padY, true
}
