package sequence

import "testing"

func newReleaseDetector() *Detector {
	d := NewDetector(DefaultMaxHistory, DefaultCooldownSeconds)
	d.Register(Template{Name: "release", Poses: []string{"fist", "open_hand"}, MaxDuration: 1.5})
	return d
}

func TestDetector_FiresWithinDuration(t *testing.T) {
	d := newReleaseDetector()

	if evts := d.Feed(0, "fist", 0.0); len(evts) != 0 {
		t.Fatal("expected no event on first pose")
	}
	evts := d.Feed(0, "open_hand", 0.5)
	if len(evts) != 1 {
		t.Fatalf("expected one event, got %d", len(evts))
	}
	if evts[0].Duration < 0.49 || evts[0].Duration > 0.51 {
		t.Errorf("expected duration ~0.5, got %f", evts[0].Duration)
	}
}

func TestDetector_NoFireOverDuration(t *testing.T) {
	d := newReleaseDetector()

	d.Feed(0, "fist", 2.0)
	evts := d.Feed(0, "open_hand", 5.0)
	if len(evts) != 0 {
		t.Errorf("expected no event over max duration, got %d", len(evts))
	}
}

func TestDetector_RepeatedPoseNeverEntersBuffer(t *testing.T) {
	d := newReleaseDetector()

	d.Feed(0, "fist", 0.0)
	d.Feed(0, "fist", 0.1)
	d.Feed(0, "fist", 0.2)
	evts := d.Feed(0, "open_hand", 0.3)
	if len(evts) != 1 {
		t.Fatalf("expected one event despite repeated fist feeds, got %d", len(evts))
	}
	if evts[0].Duration < 0.29 || evts[0].Duration > 0.31 {
		t.Errorf("expected duration measured from first distinct fist, got %f", evts[0].Duration)
	}
}

func TestDetector_CooldownSuppressesRetrigger(t *testing.T) {
	d := newReleaseDetector()

	d.Feed(0, "fist", 0.0)
	d.Feed(0, "open_hand", 0.5)

	d.Feed(0, "fist", 0.6)
	evts := d.Feed(0, "open_hand", 1.0)
	if len(evts) != 0 {
		t.Errorf("expected cooldown to suppress immediate retrigger, got %d events", len(evts))
	}
}

func TestDetector_PerHandIsolation(t *testing.T) {
	d := newReleaseDetector()

	d.Feed(0, "fist", 0.0)
	evts := d.Feed(1, "open_hand", 0.1)
	if len(evts) != 0 {
		t.Error("expected no cross-hand sequence match")
	}
}
