// Package smoothing implements the per-hand majority-vote smoother,
// adaptive confidence thresholds, and cooldown gating described for the
// pose-classification stage of the pipeline.
package smoothing

// Window is a per-hand ring buffer of the last N raw pose names.
// Smoothed() returns the strict-majority winner — a count strictly
// greater than N/2 — once the buffer holds at least N/2 entries;
// otherwise it reports no winner.
type Window struct {
	size int
	buf  []string
}

// NewWindow creates a smoothing window holding up to size raw classifications.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = 5
	}
	return &Window{size: size}
}

// Push appends a newly classified pose name, evicting the oldest entry once
// the window is full.
func (w *Window) Push(pose string) {
	w.buf = append(w.buf, pose)
	if len(w.buf) > w.size {
		w.buf = w.buf[len(w.buf)-w.size:]
	}
}

// Smoothed returns the strict-majority pose in the window, if any.
func (w *Window) Smoothed() (pose string, ok bool) {
	if len(w.buf) < (w.size+1)/2 {
		return "", false
	}

	counts := make(map[string]int, len(w.buf))
	for _, p := range w.buf {
		counts[p]++
	}

	for p, c := range counts {
		if c*2 > w.size {
			return p, true
		}
	}
	return "", false
}

// AdaptiveThresholds tracks a per-pose confidence threshold that drifts
// toward stricter values when recent classifications were unstable
// (disagreed with the smoother's majority) and relaxes slightly when they
// were stable, within [min, max] clamps.
type AdaptiveThresholds struct {
	base       float64
	min        float64
	max        float64
	rate       float64
	thresholds map[string]float64
}

// ThresholdConfig controls the adaptive threshold behaviour.
type ThresholdConfig struct {
	Base float64
	Min  float64
	Max  float64
	Rate float64
}

// DefaultThresholdConfig mirrors spec defaults: base 0.6, clamp [0.4, 0.95].
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{Base: 0.6, Min: 0.4, Max: 0.95, Rate: 0.02}
}

// NewAdaptiveThresholds creates the threshold tracker.
func NewAdaptiveThresholds(cfg ThresholdConfig) *AdaptiveThresholds {
	return &AdaptiveThresholds{
		base:       cfg.Base,
		min:        cfg.Min,
		max:        cfg.Max,
		rate:       cfg.Rate,
		thresholds: make(map[string]float64),
	}
}

// Threshold returns the current threshold for a pose, defaulting to base
// the first time a pose is seen.
func (a *AdaptiveThresholds) Threshold(pose string) float64 {
	if t, ok := a.thresholds[pose]; ok {
		return t
	}
	return a.base
}

// Update records a classification outcome for a pose: wasStable means the
// smoother's majority winner equals the most recent raw classification.
// Unstable classifications push the threshold up (stricter); stable ones
// relax it by a tenth of the adjustment rate.
func (a *AdaptiveThresholds) Update(pose string, wasStable bool) {
	t := a.Threshold(pose)
	if wasStable {
		t -= a.rate * 0.1
		if t < a.min {
			t = a.min
		}
	} else {
		t += a.rate
		if t > a.max {
			t = a.max
		}
	}
	a.thresholds[pose] = t
}

// CooldownGate suppresses repeated emission of the same (hand, pose) pair
// within a configured interval. Different pose names on the same hand are
// never gated against each other.
type CooldownGate struct {
	cooldownSeconds float64
	lastEmitted     map[cooldownKey]float64
}

type cooldownKey struct {
	hand int64
	pose string
}

// NewCooldownGate creates a gate with the given cooldown interval in seconds.
func NewCooldownGate(cooldownSeconds float64) *CooldownGate {
	return &CooldownGate{cooldownSeconds: cooldownSeconds, lastEmitted: make(map[cooldownKey]float64)}
}

// Allow reports whether (hand, pose) may fire at timeSeconds, and if so
// records the emission time.
func (g *CooldownGate) Allow(hand int64, pose string, timeSeconds float64) bool {
	key := cooldownKey{hand: hand, pose: pose}
	last, seen := g.lastEmitted[key]
	if seen && timeSeconds-last < g.cooldownSeconds {
		return false
	}
	g.lastEmitted[key] = timeSeconds
	return true
}

// Reset clears the gate's history for a hand, or everything if hand is nil.
func (g *CooldownGate) Reset(hand *int64) {
	if hand == nil {
		g.lastEmitted = make(map[cooldownKey]float64)
		return
	}
	for k := range g.lastEmitted {
		if k.hand == *hand {
			delete(g.lastEmitted, k)
		}
	}
}
