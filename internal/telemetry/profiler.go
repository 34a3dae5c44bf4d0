// Package telemetry provides per-stage latency profiling and a
// Prometheus-text-exposition metrics registry for the gesture pipeline.
package telemetry

import "sort"

// Stages names the pipeline phases tracked by the profiler, in the order
// they execute within a single frame.
var Stages = []string{
	"detection",
	"normalization",
	"feature_extraction",
	"classification",
	"sequence_detection",
	"action_dispatch",
	"total",
}

const windowSize = 120

// StageStats summarizes a stage's recent timing samples.
type StageStats struct {
	AvgMs     float64
	MinMs     float64
	MaxMs     float64
	P95Ms     float64
	CallCount int
}

type stageWindow struct {
	samples []float64 // ring buffer, oldest overwritten
	total   int64
}

// Profiler records per-stage elapsed time in a fixed-size ring buffer and
// reports rolling statistics. A disabled profiler's Track returns a no-op
// stopper so instrumented code pays no cost.
type Profiler struct {
	enabled bool
	stages  map[string]*stageWindow
}

// NewProfiler creates a profiler. When enabled is false, Track is a no-op.
func NewProfiler(enabled bool) *Profiler {
	p := &Profiler{enabled: enabled, stages: make(map[string]*stageWindow)}
	for _, s := range Stages {
		p.stages[s] = &stageWindow{}
	}
	return p
}

// Record adds one elapsed-time sample, in milliseconds, for a stage.
func (p *Profiler) Record(stage string, elapsedMs float64) {
	if !p.enabled {
		return
	}
	w, ok := p.stages[stage]
	if !ok {
		w = &stageWindow{}
		p.stages[stage] = w
	}
	w.samples = append(w.samples, elapsedMs)
	if len(w.samples) > windowSize {
		w.samples = w.samples[len(w.samples)-windowSize:]
	}
	w.total++
}

// Track starts timing a stage using an externally supplied "now" function,
// returning a stop function to call when the stage completes. Passing now
// explicitly keeps the profiler free of direct wall-clock reads so callers
// control the time source.
func (p *Profiler) Track(stage string, now func() float64) func() {
	if !p.enabled {
		return func() {}
	}
	start := now()
	return func() {
		p.Record(stage, (now()-start)*1000)
	}
}

// Stats returns rolling statistics for a stage.
func (p *Profiler) Stats(stage string) StageStats {
	w, ok := p.stages[stage]
	if !ok || len(w.samples) == 0 {
		return StageStats{}
	}

	sum, min, max := 0.0, w.samples[0], w.samples[0]
	for _, v := range w.samples {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	sorted := append([]float64(nil), w.samples...)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	p95 := sorted[idx]

	return StageStats{
		AvgMs:     sum / float64(len(w.samples)),
		MinMs:     min,
		MaxMs:     max,
		P95Ms:     p95,
		CallCount: int(w.total),
	}
}

// AllStats returns rolling statistics for every known stage, keyed by stage
// name.
func (p *Profiler) AllStats() map[string]StageStats {
	out := make(map[string]StageStats, len(p.stages))
	for stage := range p.stages {
		out[stage] = p.Stats(stage)
	}
	return out
}
