// Package sequence detects ordered pose-transition patterns — e.g.
// fist→open_hand ("release") — within a bounded time window.
package sequence

// Template is a named ordered sequence of pose names that triggers a
// compound event when observed back-to-back within max duration.
type Template struct {
	Name        string   `json:"name"`
	Poses       []string `json:"poses"`
	MaxDuration float64  `json:"maxDuration"` // seconds
}

// Event fires when a complete sequence template is observed.
type Event struct {
	SequenceName string
	Poses        []string
	Duration     float64
	Timestamp    float64
}

type transition struct {
	pose string
	time float64
}

// Detector watches per-hand streams of classified poses for registered
// sequence templates. Only pose *transitions* — changes from the
// previously observed pose — enter a hand's history; repeats of the same
// pose are ignored so a held pose never re-enters the buffer.
type Detector struct {
	templates      []Template
	history        map[int64][]transition
	maxHistory     int
	lastTriggered  map[triggerKey]float64
	cooldownSecond float64
}

type triggerKey struct {
	hand int64
	name string
}

// DefaultMaxHistory bounds the per-hand transition buffer.
const DefaultMaxHistory = 20

// DefaultCooldownSeconds is the minimum interval between repeat triggers
// of the same (hand, sequence) pair.
const DefaultCooldownSeconds = 1.0

// NewDetector creates a sequence detector with the given per-hand history
// cap and cooldown.
func NewDetector(maxHistory int, cooldownSeconds float64) *Detector {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Detector{
		history:        make(map[int64][]transition),
		maxHistory:     maxHistory,
		lastTriggered:  make(map[triggerKey]float64),
		cooldownSecond: cooldownSeconds,
	}
}

// Register adds a sequence template to watch for.
func (d *Detector) Register(t Template) {
	d.templates = append(d.templates, t)
}

// Feed observes a new classified pose for a hand at the given time and
// returns any sequence templates it completes. At most one event is
// returned per call, the first matching template in registration order.
func (d *Detector) Feed(hand int64, pose string, timestamp float64) []Event {
	hist := d.history[hand]

	if len(hist) > 0 && hist[len(hist)-1].pose == pose {
		return nil
	}

	hist = append(hist, transition{pose: pose, time: timestamp})
	if len(hist) > d.maxHistory {
		hist = hist[len(hist)-d.maxHistory:]
	}
	d.history[hand] = hist

	for _, tmpl := range d.templates {
		if evt, ok := d.checkTemplate(tmpl, hist, hand, timestamp); ok {
			return []Event{evt}
		}
	}
	return nil
}

func (d *Detector) checkTemplate(tmpl Template, hist []transition, hand int64, now float64) (Event, bool) {
	k := len(tmpl.Poses)
	if k == 0 || len(hist) < k {
		return Event{}, false
	}

	key := triggerKey{hand: hand, name: tmpl.Name}
	if last, ok := d.lastTriggered[key]; ok && now-last < d.cooldownSecond {
		return Event{}, false
	}

	tail := hist[len(hist)-k:]
	for i, expected := range tmpl.Poses {
		if tail[i].pose != expected {
			return Event{}, false
		}
	}

	duration := tail[len(tail)-1].time - tail[0].time
	if duration > tmpl.MaxDuration {
		return Event{}, false
	}

	d.lastTriggered[key] = now
	return Event{
		SequenceName: tmpl.Name,
		Poses:        append([]string(nil), tmpl.Poses...),
		Duration:     duration,
		Timestamp:    now,
	}, true
}

// Reset clears history for one hand, or every hand if hand is nil.
func (d *Detector) Reset(hand *int64) {
	if hand == nil {
		d.history = make(map[int64][]transition)
		d.lastTriggered = make(map[triggerKey]float64)
		return
	}
	delete(d.history, *hand)
}

// DefaultTemplates returns the built-in sequences ported from the
// reference detector's defaults.
func DefaultTemplates() []Template {
	return []Template{
		{Name: "release", Poses: []string{"fist", "open_hand"}, MaxDuration: 1.5},
		{Name: "grab", Poses: []string{"open_hand", "fist"}, MaxDuration: 1.5},
		{Name: "pinch_release", Poses: []string{"ok_sign", "open_hand"}, MaxDuration: 1.5},
		{Name: "peace_out", Poses: []string{"peace", "fist"}, MaxDuration: 2.0},
		{Name: "wave", Poses: []string{"open_hand", "fist", "open_hand"}, MaxDuration: 2.0},
		{Name: "point_and_click", Poses: []string{"pointing", "fist"}, MaxDuration: 1.5},
	}
}
