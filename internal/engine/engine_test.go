package engine

import (
	"testing"

	"github.com/ayusman/kuchipudi/internal/detector"
	"github.com/ayusman/kuchipudi/internal/landmark"
)

// openHand builds a hand with every fingertip extended well past its PIP,
// classified by the default registry as "open_hand".
func openHand(cx, cy float64) detector.HandLandmarks {
	var h detector.HandLandmarks
	h.Points[detector.Wrist] = detector.Point3D{X: cx, Y: cy, Z: 0}
	tips := []int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	pips := []int{detector.ThumbIP, detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}
	for i := range tips {
		f := float64(i)
		h.Points[pips[i]] = detector.Point3D{X: cx, Y: cy + 0.1 + f*0.01, Z: 0}
		h.Points[tips[i]] = detector.Point3D{X: cx, Y: cy + 0.3 + f*0.01, Z: 0}
	}
	fillRemaining(&h, cx, cy)
	return h
}

// fistHand builds a hand with every fingertip curled closer to the wrist
// than its PIP, classified as "fist".
func fistHand(cx, cy float64) detector.HandLandmarks {
	var h detector.HandLandmarks
	h.Points[detector.Wrist] = detector.Point3D{X: cx, Y: cy, Z: 0}
	tips := []int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	pips := []int{detector.ThumbIP, detector.IndexPIP, detector.MiddlePIP, detector.RingPIP, detector.PinkyPIP}
	for i := range tips {
		h.Points[pips[i]] = detector.Point3D{X: cx, Y: cy + 0.15, Z: 0}
		h.Points[tips[i]] = detector.Point3D{X: cx, Y: cy + 0.05, Z: 0}
	}
	fillRemaining(&h, cx, cy)
	return h
}

func fillRemaining(h *detector.HandLandmarks, cx, cy float64) {
	for i := range h.Points {
		if h.Points[i] == (detector.Point3D{}) {
			h.Points[i] = detector.Point3D{X: cx, Y: cy + 0.2, Z: 0}
		}
	}
}

func clockAt(t float64) Now {
	return func() float64 { return t }
}

func TestEngine_EmitsGestureEventForOpenHand(t *testing.T) {
	e := New(DefaultConfig())

	var events []Event
	for i := 0; i < 6; i++ {
		bundle := landmark.Bundle{Hands: []detector.HandLandmarks{openHand(0.5, 0.5)}, Timestamp: int64(i * 100)}
		events = e.ProcessFrame(bundle, clockAt(float64(i)*0.1))
	}

	found := false
	for _, evt := range events {
		if ge, ok := evt.(GestureEvent); ok && ge.Gesture == "open_hand" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an open_hand gesture event, got %#v", events)
	}
}

func TestEngine_DropsMalformedBundle(t *testing.T) {
	e := New(DefaultConfig())

	var h detector.HandLandmarks
	h.Points[0] = detector.Point3D{X: nanValue(), Y: 0, Z: 0}
	bundle := landmark.Bundle{Hands: []detector.HandLandmarks{h}, Timestamp: 0}

	events := e.ProcessFrame(bundle, clockAt(0))
	if events != nil {
		t.Errorf("expected no events for a malformed bundle, got %v", events)
	}
	if e.Metrics().Render() == "" {
		t.Error("expected metrics render to be non-empty")
	}
}

func TestEngine_SequenceFiresAcrossPoseTransition(t *testing.T) {
	e := New(DefaultConfig())

	var lastEvents []Event
	for i := 0; i < 6; i++ {
		bundle := landmark.Bundle{Hands: []detector.HandLandmarks{fistHand(0.5, 0.5)}, Timestamp: int64(i * 100)}
		lastEvents = e.ProcessFrame(bundle, clockAt(float64(i)*0.1))
	}
	_ = lastEvents

	var seqEvents []Event
	for i := 6; i < 12; i++ {
		bundle := landmark.Bundle{Hands: []detector.HandLandmarks{openHand(0.5, 0.5)}, Timestamp: int64(i * 100)}
		seqEvents = append(seqEvents, e.ProcessFrame(bundle, clockAt(float64(i)*0.1))...)
	}

	foundGesture, foundSequence := false, false
	for _, evt := range seqEvents {
		switch v := evt.(type) {
		case GestureEvent:
			if v.Gesture == "open_hand" {
				foundGesture = true
			}
		case SequenceEvent:
			if v.Sequence == "release" {
				foundSequence = true
			}
		}
	}
	if !foundGesture {
		t.Error("expected an open_hand gesture after the transition")
	}
	if !foundSequence {
		t.Error("expected the release sequence after the fist-to-open transition")
	}
}

func TestEngine_BimanualFeedRequiresTwoHands(t *testing.T) {
	e := New(DefaultConfig())

	bundle := landmark.Bundle{Hands: []detector.HandLandmarks{openHand(0.5, 0.5)}, Timestamp: 0}
	events := e.ProcessFrame(bundle, clockAt(0))

	for _, evt := range events {
		if _, ok := evt.(BimanualEvent); ok {
			t.Error("expected no bimanual event with only one hand present")
		}
	}
}

func TestEngine_EmitsStatsEventEveryTenFrames(t *testing.T) {
	e := New(DefaultConfig())

	var statsSeen int
	for i := 0; i < statsEmitInterval*3; i++ {
		bundle := landmark.Bundle{Hands: []detector.HandLandmarks{openHand(0.5, 0.5)}, Timestamp: int64(i * 100)}
		events := e.ProcessFrame(bundle, clockAt(float64(i)*0.1))

		wantStats := (i+1)%statsEmitInterval == 0
		gotStats := false
		for _, evt := range events {
			if se, ok := evt.(StatsEvent); ok {
				gotStats = true
				statsSeen++
				if se.HandsDetected != 1 {
					t.Errorf("frame %d: expected hands_detected 1, got %d", i, se.HandsDetected)
				}
			}
		}
		if gotStats != wantStats {
			t.Errorf("frame %d: stats event present = %v, want %v", i, gotStats, wantStats)
		}
	}
	if statsSeen != 3 {
		t.Errorf("expected 3 stats events over %d frames, got %d", statsEmitInterval*3, statsSeen)
	}
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}
