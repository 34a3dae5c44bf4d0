// Package landmark provides the frame-level wrapper around detected hand
// landmarks that the rest of the pipeline operates on.
package landmark

import (
	"fmt"
	"math"

	"github.com/ayusman/kuchipudi/internal/detector"
)

// Bundle is a single observation from the landmark source: zero or more
// detected hands plus the capture timestamp in Unix milliseconds.
type Bundle struct {
	Hands     []detector.HandLandmarks
	Timestamp int64
}

// Frame is an alias kept for call sites that predate the Bundle rename.
type Frame = Bundle

// Validate reports whether a bundle is well-formed enough to feed into the
// pipeline. Malformed bundles (any landmark with a non-finite coordinate,
// NaN or infinite) are dropped by the caller rather than propagated as
// partial results.
func (f Bundle) Validate() error {
	for i, h := range f.Hands {
		for j, p := range h.Points {
			if !isFinite(p.X) || !isFinite(p.Y) || !isFinite(p.Z) {
				return fmt.Errorf("hand %d: landmark %d has non-finite coordinate", i, j)
			}
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Centroid returns the mean of all 21 landmark points, used by the
// trajectory and bimanual components as the hand's representative position.
func Centroid(h *detector.HandLandmarks) detector.Point3D {
	var sum detector.Point3D
	for _, p := range h.Points {
		sum.X += p.X
		sum.Y += p.Y
		sum.Z += p.Z
	}
	n := float64(detector.NumLandmarks)
	return detector.Point3D{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}
}
