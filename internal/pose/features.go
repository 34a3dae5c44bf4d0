package pose

import "github.com/ayusman/kuchipudi/internal/detector"

// FeatureVectorLen is the length of the vector produced by FeatureVector:
// 63 flattened landmark coordinates + 10 pairwise fingertip distances +
// 5 finger extension ratios + 3 palm-normal components.
const FeatureVectorLen = 81

// FeatureVector extracts a fixed-length numeric feature vector from
// normalized landmarks, for consumption by a learned classifier sharing
// this package's classify-landmarks contract. No trainer or model
// evaluator consumes it here — extraction is pure and self-contained so
// a future learned classifier can be dropped in without touching this
// definition.
func FeatureVector(hand *detector.HandLandmarks) [FeatureVectorLen]float64 {
	normalized := hand.Normalize()
	pts := normalized.Points

	var out [FeatureVectorLen]float64
	idx := 0

	for i := 0; i < detector.NumLandmarks; i++ {
		out[idx] = pts[i].X
		idx++
		out[idx] = pts[i].Y
		idx++
		out[idx] = pts[i].Z
		idx++
	}

	tips := [5]int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	for i := 0; i < len(tips); i++ {
		for j := i + 1; j < len(tips); j++ {
			out[idx] = dist(pts[tips[i]], pts[tips[j]])
			idx++
		}
	}

	wrist := pts[detector.Wrist]
	for i := 0; i < 5; i++ {
		tipDist := dist(pts[fingerTips[i]], wrist)
		pipDist := dist(pts[fingerPIPs[i]], wrist) + 1e-8
		out[idx] = tipDist / pipDist
		idx++
	}

	v1 := sub(pts[detector.IndexMCP], pts[detector.Wrist])
	v2 := sub(pts[detector.PinkyMCP], pts[detector.Wrist])
	normal := cross(v1, v2)
	n := norm(normal) + 1e-8
	out[idx] = normal.X / n
	idx++
	out[idx] = normal.Y / n
	idx++
	out[idx] = normal.Z / n

	return out
}

func cross(a, b detector.Point3D) detector.Point3D {
	return detector.Point3D{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}
