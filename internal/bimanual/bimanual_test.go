package bimanual

import (
	"testing"

	"github.com/ayusman/kuchipudi/internal/detector"
)

func flatHandAt(x, y float64) detector.HandLandmarks {
	var h detector.HandLandmarks
	for i := range h.Points {
		h.Points[i] = detector.Point3D{X: x, Y: y, Z: 0}
	}
	return h
}

func lShapeHandAt(x, y, thumbSign float64) detector.HandLandmarks {
	h := flatHandAt(x, y)
	h.Points[detector.Wrist] = detector.Point3D{X: x, Y: y, Z: 0}
	h.Points[detector.ThumbIP] = detector.Point3D{X: x, Y: y, Z: 0}
	h.Points[detector.ThumbTip] = detector.Point3D{X: x + thumbSign*0.3, Y: y, Z: 0}
	h.Points[detector.IndexPIP] = detector.Point3D{X: x, Y: y + 0.1, Z: 0}
	h.Points[detector.IndexTip] = detector.Point3D{X: x, Y: y + 0.3, Z: 0}
	h.Points[detector.MiddlePIP] = detector.Point3D{X: x, Y: y + 0.1, Z: 0}
	h.Points[detector.MiddleTip] = detector.Point3D{X: x, Y: y + 0.05, Z: 0}
	h.Points[detector.RingPIP] = detector.Point3D{X: x, Y: y + 0.1, Z: 0}
	h.Points[detector.RingTip] = detector.Point3D{X: x, Y: y + 0.05, Z: 0}
	return h
}

func TestDetector_PinchZoomFiresOnDistanceChange(t *testing.T) {
	d := NewDetector()

	left := flatHandAt(0, 0)
	right := flatHandAt(0.5, 0)
	d.Feed([]detector.HandLandmarks{left, right}, 0.0)

	right2 := flatHandAt(1.0, 0)
	events := d.Feed([]detector.HandLandmarks{left, right2}, 0.1)

	found := false
	for _, e := range events {
		if e.Gesture == "pinch_zoom" {
			found = true
		}
	}
	if !found {
		t.Error("expected pinch_zoom event on large distance change")
	}
}

func TestDetector_NoPinchZoomOnSmallChange(t *testing.T) {
	d := NewDetector()

	left := flatHandAt(0, 0)
	right := flatHandAt(0.5, 0)
	d.Feed([]detector.HandLandmarks{left, right}, 0.0)

	right2 := flatHandAt(0.505, 0)
	events := d.Feed([]detector.HandLandmarks{left, right2}, 0.1)

	for _, e := range events {
		if e.Gesture == "pinch_zoom" {
			t.Error("expected no pinch_zoom for a change below threshold")
		}
	}
}

func TestDetector_ClapFiresOnFastClose(t *testing.T) {
	d := NewDetector()

	left := flatHandAt(0, 0)
	dist := 0.5
	found := false
	for i := 0; i < 7; i++ {
		right := flatHandAt(dist, 0)
		events := d.Feed([]detector.HandLandmarks{left, right}, float64(i)*0.05)
		for _, e := range events {
			if e.Gesture == "clap" {
				found = true
			}
		}
		dist -= 0.1
		if dist < 0.02 {
			dist = 0.02
		}
	}

	if !found {
		t.Error("expected clap event on fast-closing hands")
	}
}

func TestDetector_FrameRequiresOppositeThumbs(t *testing.T) {
	d := NewDetector()

	left := lShapeHandAt(0, 0, 1.0)
	right := lShapeHandAt(0.5, 0, -1.0)

	events := d.Feed([]detector.HandLandmarks{left, right}, 0.0)
	found := false
	for _, e := range events {
		if e.Gesture == "frame" {
			found = true
		}
	}
	if !found {
		t.Error("expected frame event for opposite-thumb L-shapes")
	}
}

func TestDetector_FrameRejectsSameDirectionThumbs(t *testing.T) {
	d := NewDetector()

	left := lShapeHandAt(0, 0, 1.0)
	right := lShapeHandAt(0.5, 0, 1.0)

	events := d.Feed([]detector.HandLandmarks{left, right}, 0.0)
	for _, e := range events {
		if e.Gesture == "frame" {
			t.Error("expected no frame event when thumbs point the same way")
		}
	}
}

func TestDetector_FewerThanTwoHandsNoEvents(t *testing.T) {
	d := NewDetector()

	events := d.Feed([]detector.HandLandmarks{flatHandAt(0, 0)}, 0.0)
	if events != nil {
		t.Error("expected no events with fewer than two hands")
	}
}

func TestDetector_ConductingFiresOnSustainedVerticalMotion(t *testing.T) {
	d := NewDetector()

	left := flatHandAt(0, 0)
	y := 0.0
	found := false
	for i := 0; i < 9; i++ {
		right := flatHandAt(0.5, y)
		events := d.Feed([]detector.HandLandmarks{left, right}, float64(i)*0.1)
		y += 0.05
		for _, e := range events {
			if e.Gesture == "conduct_down" {
				found = true
			}
		}
	}
	if !found {
		t.Error("expected conduct_down event after sustained downward motion")
	}
}
