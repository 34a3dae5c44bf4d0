// Package tracker assigns stable identities to hands across frames using
// greedy nearest-neighbor matching on hand centroid position.
package tracker

import (
	"math"

	"github.com/ayusman/kuchipudi/internal/detector"
	"github.com/ayusman/kuchipudi/internal/landmark"
)

// Track is a single tracked hand's persistent state.
type Track struct {
	ID           int64
	Hand         detector.HandLandmarks
	LastSeenMs   int64
	LastCentroid detector.Point3D
}

// Config controls how aggressively the tracker associates and retires hands.
type Config struct {
	// MaxMatchDistance is the largest centroid-to-centroid distance (in the
	// detector's normalized image coordinates) that counts as the same hand
	// between consecutive frames.
	MaxMatchDistance float64
	// TimeoutMs is how long a track survives without being re-observed
	// before it is pruned.
	TimeoutMs int64
}

// DefaultConfig returns sensible tracker defaults.
func DefaultConfig() Config {
	return Config{MaxMatchDistance: 0.25, TimeoutMs: 1000}
}

// Tracker maintains hand identities across frames via greedy nearest-
// neighbor assignment: each new observation is matched to its closest
// unclaimed existing track within MaxMatchDistance, closest pairs first.
// Unmatched observations become new tracks with a monotonically
// increasing ID; unmatched tracks are pruned once they exceed the
// timeout without a fresh observation.
type Tracker struct {
	cfg     Config
	tracks  map[int64]*Track
	nextID  int64
}

// New creates a Tracker with the given configuration.
func New(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, tracks: make(map[int64]*Track)}
}

type candidate struct {
	trackID  int64
	handIdx  int
	distance float64
}

// Update assigns identities to the hands observed at timestampMs and prunes
// any track that has timed out. Returns the tracks corresponding to the
// input hands, in the same order as hands.
func (t *Tracker) Update(hands []detector.HandLandmarks, timestampMs int64) []*Track {
	centroids := make([]detector.Point3D, len(hands))
	for hi := range hands {
		centroids[hi] = landmark.Centroid(&hands[hi])
	}

	var candidates []candidate
	for ti, tr := range t.tracks {
		for hi := range hands {
			d := dist(tr.LastCentroid, centroids[hi])
			if d <= t.cfg.MaxMatchDistance {
				candidates = append(candidates, candidate{trackID: ti, handIdx: hi, distance: d})
			}
		}
	}
	sortCandidates(candidates)

	claimedTrack := make(map[int64]bool)
	claimedHand := make(map[int]bool)
	assigned := make([]*Track, len(hands))

	for _, c := range candidates {
		if claimedTrack[c.trackID] || claimedHand[c.handIdx] {
			continue
		}
		claimedTrack[c.trackID] = true
		claimedHand[c.handIdx] = true

		tr := t.tracks[c.trackID]
		tr.Hand = hands[c.handIdx]
		tr.LastCentroid = centroids[c.handIdx]
		tr.LastSeenMs = timestampMs
		assigned[c.handIdx] = tr
	}

	for hi := range hands {
		if assigned[hi] != nil {
			continue
		}
		tr := &Track{
			ID:           t.nextID,
			Hand:         hands[hi],
			LastCentroid: centroids[hi],
			LastSeenMs:   timestampMs,
		}
		t.nextID++
		t.tracks[tr.ID] = tr
		assigned[hi] = tr
	}

	for id, tr := range t.tracks {
		if timestampMs-tr.LastSeenMs > t.cfg.TimeoutMs {
			delete(t.tracks, id)
		}
	}

	return assigned
}

// Active returns the currently live tracks, order unspecified.
func (t *Tracker) Active() []*Track {
	out := make([]*Track, 0, len(t.tracks))
	for _, tr := range t.tracks {
		out = append(out, tr)
	}
	return out
}

func sortCandidates(c []candidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].distance < c[j-1].distance; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}

func dist(a, b detector.Point3D) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
