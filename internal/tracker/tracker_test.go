package tracker

import (
	"testing"

	"github.com/ayusman/kuchipudi/internal/detector"
)

// handAt builds a hand with every landmark at the same point, so its
// centroid is exactly (x, y) regardless of which point the tracker uses.
func handAt(x, y float64) detector.HandLandmarks {
	var h detector.HandLandmarks
	for i := range h.Points {
		h.Points[i] = detector.Point3D{X: x, Y: y}
	}
	return h
}

func TestTracker_AssignsStableIDAcrossFrames(t *testing.T) {
	tr := New(DefaultConfig())

	tracks1 := tr.Update([]detector.HandLandmarks{handAt(0.5, 0.5)}, 0)
	tracks2 := tr.Update([]detector.HandLandmarks{handAt(0.51, 0.5)}, 33)

	if tracks1[0].ID != tracks2[0].ID {
		t.Errorf("expected stable ID, got %d then %d", tracks1[0].ID, tracks2[0].ID)
	}
}

func TestTracker_AssignsNewIDWhenFarApart(t *testing.T) {
	tr := New(DefaultConfig())

	tracks1 := tr.Update([]detector.HandLandmarks{handAt(0.1, 0.1)}, 0)
	tracks2 := tr.Update([]detector.HandLandmarks{handAt(0.9, 0.9)}, 33)

	if tracks1[0].ID == tracks2[0].ID {
		t.Error("expected a new ID when hand jumps far away")
	}
}

func TestTracker_PrunesTimedOutTracks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutMs = 100
	tr := New(cfg)

	tr.Update([]detector.HandLandmarks{handAt(0.5, 0.5)}, 0)
	if len(tr.Active()) != 1 {
		t.Fatal("expected 1 active track")
	}

	tr.Update(nil, 200)
	if len(tr.Active()) != 0 {
		t.Error("expected track to be pruned after timeout")
	}
}

func TestTracker_TwoHandsGetDistinctIDs(t *testing.T) {
	tr := New(DefaultConfig())
	tracks := tr.Update([]detector.HandLandmarks{handAt(0.1, 0.5), handAt(0.9, 0.5)}, 0)

	if tracks[0].ID == tracks[1].ID {
		t.Error("expected distinct IDs for two simultaneous hands")
	}
}
