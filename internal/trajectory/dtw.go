package trajectory

import "math"

// Point2 is a 2-D point used for trajectory matching.
type Point2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DefaultBand is the Sakoe-Chiba window default.
const DefaultBand = 10

// dtwBandCost computes the Sakoe-Chiba-banded DTW distance between two
// point sequences, normalized by combined length. Returns +Inf if either
// sequence is empty.
func dtwBandCost(s, t []Point2, window int) float64 {
	n, m := len(s), len(t)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	cost := make([][]float64, n+1)
	for i := range cost {
		cost[i] = make([]float64, m+1)
		for j := range cost[i] {
			cost[i][j] = math.Inf(1)
		}
	}
	cost[0][0] = 0

	for i := 1; i <= n; i++ {
		jStart := i - window
		if jStart < 1 {
			jStart = 1
		}
		jEnd := i + window
		if jEnd > m {
			jEnd = m
		}
		for j := jStart; j <= jEnd; j++ {
			d := pointDist(s[i-1], t[j-1])
			cost[i][j] = d + min3(cost[i-1][j], cost[i][j-1], cost[i-1][j-1])
		}
	}

	return cost[n][m] / float64(n+m)
}

func pointDist(a, b Point2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// resample re-samples a path to exactly n evenly-spaced points along its
// cumulative arc length. Paths shorter than 2 points are returned as-is
// (n copies of the single point if resampling is still requested).
func resample(points []Point2, n int) []Point2 {
	if len(points) == 0 {
		return nil
	}
	if len(points) == 1 {
		out := make([]Point2, n)
		for i := range out {
			out[i] = points[0]
		}
		return out
	}

	segLengths := make([]float64, len(points)-1)
	cum := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		segLengths[i-1] = pointDist(points[i-1], points[i])
		cum[i] = cum[i-1] + segLengths[i-1]
	}
	total := cum[len(cum)-1]

	out := make([]Point2, n)
	if total < 1e-8 {
		for i := range out {
			out[i] = points[0]
		}
		return out
	}

	for i := 0; i < n; i++ {
		target := total * float64(i) / float64(n-1)
		idx := searchSorted(cum, target)
		if idx > len(points)-2 {
			idx = len(points) - 2
		}
		segLen := segLengths[idx]
		if segLen < 1e-8 {
			segLen = 1e-8
		}
		tParam := (target - cum[idx]) / segLen
		out[i] = Point2{
			X: points[idx].X + tParam*(points[idx+1].X-points[idx].X),
			Y: points[idx].Y + tParam*(points[idx+1].Y-points[idx].Y),
		}
	}
	return out
}

// searchSorted returns the index of the last cumulative-length entry that
// is <= target (mirroring numpy.searchsorted(..., side="right") - 1).
func searchSorted(cum []float64, target float64) int {
	idx := 0
	for i, v := range cum {
		if v <= target {
			idx = i
		} else {
			break
		}
	}
	return idx
}

// normalizeCentered centers a path at the origin and scales each axis to
// span [-0.5, 0.5], guarding zero-span axes to a span of 1.
func normalizeCentered(points []Point2) []Point2 {
	if len(points) == 0 {
		return points
	}

	var meanX, meanY float64
	for _, p := range points {
		meanX += p.X
		meanY += p.Y
	}
	n := float64(len(points))
	meanX /= n
	meanY /= n

	minX, maxX := points[0].X-meanX, points[0].X-meanX
	minY, maxY := points[0].Y-meanY, points[0].Y-meanY
	centered := make([]Point2, len(points))
	for i, p := range points {
		cx, cy := p.X-meanX, p.Y-meanY
		centered[i] = Point2{X: cx, Y: cy}
		if cx < minX {
			minX = cx
		}
		if cx > maxX {
			maxX = cx
		}
		if cy < minY {
			minY = cy
		}
		if cy > maxY {
			maxY = cy
		}
	}

	spanX := maxX - minX
	if spanX < 1e-8 {
		spanX = 1.0
	}
	spanY := maxY - minY
	if spanY < 1e-8 {
		spanY = 1.0
	}

	out := make([]Point2, len(points))
	for i, p := range centered {
		out[i] = Point2{X: p.X / spanX, Y: p.Y / spanY}
	}
	return out
}
