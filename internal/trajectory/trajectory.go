// Package trajectory accumulates per-hand spatial paths and matches them
// against dynamic-time-warped templates to recognise swipes, circles, and
// other whole-hand motions that a single-frame pose cannot express.
package trajectory

import "math"

// Sample is one timestamped centroid observation fed into a hand's path.
type Sample struct {
	Point   Point2
	TimeSec float64
}

// Template is a named reference path matched via DTW against a resampled,
// normalized candidate path.
type Template struct {
	Name     string   `json:"name"`
	Points   []Point2 `json:"points"` // already resampled + normalized
	MinScore float64  `json:"minScore"`
}

// Event reports a recognised trajectory.
type Event struct {
	Name      string
	Score     float64
	Hand      int64
	Timestamp float64
}

// Config controls path accumulation and matching.
type Config struct {
	WindowSeconds     float64
	MinPathLength     float64
	VelocityThreshold float64
	StillFrames       int
	ResamplePoints    int
	DTWWindow         int
	CooldownSeconds   float64
}

// DefaultConfig mirrors the reference trajectory tracker's defaults.
func DefaultConfig() Config {
	return Config{
		WindowSeconds:     2.0,
		MinPathLength:     0.08,
		VelocityThreshold: 0.005,
		StillFrames:       5,
		ResamplePoints:    32,
		DTWWindow:         DefaultBand,
		CooldownSeconds:   1.0,
	}
}

type handState struct {
	samples     []Sample
	stillCount  int
	lastTrigger float64
	hasTrigger  bool
}

// Tracker accumulates per-hand trajectories and matches completed paths
// against registered templates once the hand goes still.
type Tracker struct {
	cfg       Config
	templates []Template
	hands     map[int64]*handState

	recording       string
	recordingPoints []Point2
}

// New creates a trajectory tracker with the given configuration.
func New(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, hands: make(map[int64]*handState)}
}

// Register adds a template to match against. Points must already be
// resampled to cfg.ResamplePoints and normalized (see NormalizeTemplate).
func (t *Tracker) Register(tmpl Template) {
	t.templates = append(t.templates, tmpl)
}

// NormalizeTemplate resamples and normalizes a raw point list so it is
// ready for Register.
func NormalizeTemplate(raw []Point2, resamplePoints int) []Point2 {
	return normalizeCentered(resample(raw, resamplePoints))
}

// Feed observes a hand's centroid at the given time and returns a
// trajectory event if a still period just completed a recognisable path.
func (t *Tracker) Feed(hand int64, point Point2, timeSec float64) (Event, bool) {
	if t.recording != "" {
		t.recordingPoints = append(t.recordingPoints, point)
	}

	hs := t.hands[hand]
	if hs == nil {
		hs = &handState{}
		t.hands[hand] = hs
	}

	velocity := 0.0
	if len(hs.samples) > 0 {
		prev := hs.samples[len(hs.samples)-1]
		dt := timeSec - prev.TimeSec
		if dt > 1e-6 {
			velocity = pointDist(prev.Point, point) / dt
		}
	}

	hs.samples = append(hs.samples, Sample{Point: point, TimeSec: timeSec})
	cutoff := timeSec - t.cfg.WindowSeconds
	i := 0
	for i < len(hs.samples) && hs.samples[i].TimeSec < cutoff {
		i++
	}
	if i > 0 {
		hs.samples = hs.samples[i:]
	}

	if velocity < t.cfg.VelocityThreshold {
		hs.stillCount++
	} else {
		hs.stillCount = 0
	}

	if hs.stillCount < t.cfg.StillFrames {
		return Event{}, false
	}
	// Only attempt a match once per still period; reset after matching or
	// after the path is judged too short, so continued stillness doesn't
	// re-trigger every frame.
	hs.stillCount = 0

	if hs.hasTrigger && timeSec-hs.lastTrigger < t.cfg.CooldownSeconds {
		return Event{}, false
	}

	path := make([]Point2, len(hs.samples))
	for idx, s := range hs.samples {
		path[idx] = s.Point
	}

	if pathLength(path) < t.cfg.MinPathLength {
		return Event{}, false
	}

	candidate := normalizeCentered(resample(path, t.cfg.ResamplePoints))

	best := Template{}
	bestScore := -1.0
	for _, tmpl := range t.templates {
		dist := dtwBandCost(candidate, tmpl.Points, t.cfg.DTWWindow)
		score := 1 - dist*2.0
		if score < 0 {
			score = 0
		}
		if score >= tmpl.MinScore && score > bestScore {
			best = tmpl
			bestScore = score
		}
	}

	if bestScore < 0 {
		return Event{}, false
	}

	hs.lastTrigger = timeSec
	hs.hasTrigger = true
	hs.samples = nil

	return Event{Name: best.Name, Score: bestScore, Hand: hand, Timestamp: timeSec}, true
}

// Reset clears accumulated state for a hand, or every hand if hand is nil.
func (t *Tracker) Reset(hand *int64) {
	if hand == nil {
		t.hands = make(map[int64]*handState)
		return
	}
	delete(t.hands, *hand)
}

// StartRecording switches the tracker into a mode where every subsequently
// observed centroid, from any hand, is also appended to a recording buffer
// for the named custom template.
func (t *Tracker) StartRecording(name string) {
	t.recording = name
	t.recordingPoints = nil
}

// IsRecording reports whether a recording is currently in progress.
func (t *Tracker) IsRecording() bool {
	return t.recording != ""
}

// StopRecording ends the current recording and registers its captured
// points as a new template, normalized and resampled the same way as
// every other template. Returns false, registering nothing, if fewer than
// 5 points were captured.
func (t *Tracker) StopRecording(minScore float64) (Template, bool) {
	name := t.recording
	points := t.recordingPoints
	t.recording = ""
	t.recordingPoints = nil

	if name == "" || len(points) < 5 {
		return Template{}, false
	}

	tmpl := Template{
		Name:     name,
		Points:   NormalizeTemplate(points, t.cfg.ResamplePoints),
		MinScore: minScore,
	}
	t.Register(tmpl)
	return tmpl, true
}

func pathLength(points []Point2) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += pointDist(points[i-1], points[i])
	}
	return total
}

// DefaultTemplates returns the built-in shape templates, pre-normalized,
// ported from the reference tracker's canonical paths.
func DefaultTemplates(resamplePoints int) []Template {
	line := func(x0, y0, x1, y1 float64, n int) []Point2 {
		pts := make([]Point2, n)
		for i := 0; i < n; i++ {
			f := float64(i) / float64(n-1)
			pts[i] = Point2{X: x0 + f*(x1-x0), Y: y0 + f*(y1-y0)}
		}
		return pts
	}
	circle := func(clockwise bool, n int) []Point2 {
		pts := make([]Point2, n)
		for i := 0; i < n; i++ {
			a := 2 * math.Pi * float64(i) / float64(n-1)
			if clockwise {
				a = -a
			}
			pts[i] = Point2{X: math.Cos(a), Y: math.Sin(a)}
		}
		return pts
	}
	zPattern := []Point2{{0, 1}, {1, 1}, {0, 0}, {1, 0}}
	wavePattern := func(n int) []Point2 {
		pts := make([]Point2, n)
		for i := 0; i < n; i++ {
			f := float64(i) / float64(n-1)
			pts[i] = Point2{X: f, Y: math.Sin(f * 2 * math.Pi)}
		}
		return pts
	}

	raw := map[string][]Point2{
		"swipe_right": line(0, 0, 1, 0, resamplePoints),
		"swipe_left":  line(1, 0, 0, 0, resamplePoints),
		"swipe_up":    line(0, 1, 0, 0, resamplePoints),
		"swipe_down":  line(0, 0, 0, 1, resamplePoints),
		"circle_cw":   circle(true, resamplePoints),
		"circle_ccw":  circle(false, resamplePoints),
		"z_pattern":   zPattern,
		"wave":        wavePattern(resamplePoints),
	}
	minScores := map[string]float64{
		"swipe_right": 0.60, "swipe_left": 0.60, "swipe_up": 0.60, "swipe_down": 0.60,
		"circle_cw": 0.55, "circle_ccw": 0.55, "z_pattern": 0.55, "wave": 0.50,
	}

	names := []string{"swipe_right", "swipe_left", "swipe_up", "swipe_down", "circle_cw", "circle_ccw", "z_pattern", "wave"}
	out := make([]Template, 0, len(names))
	for _, name := range names {
		out = append(out, Template{
			Name:     name,
			Points:   normalizeCentered(resample(raw[name], resamplePoints)),
			MinScore: minScores[name],
		})
	}
	return out
}
