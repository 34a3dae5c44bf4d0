// Package engine is the per-frame orchestrator: it wires landmark
// normalisation, hand tracking, pose classification, smoothing, sequence
// detection, trajectory matching, bimanual detection, and canvas command
// generation into the single event stream described by the outbound
// interface, following the teacher's single-threaded per-frame pipeline
// shape.
package engine

import (
	"github.com/ayusman/kuchipudi/internal/bimanual"
	"github.com/ayusman/kuchipudi/internal/canvas"
	"github.com/ayusman/kuchipudi/internal/detector"
	"github.com/ayusman/kuchipudi/internal/landmark"
	"github.com/ayusman/kuchipudi/internal/pose"
	"github.com/ayusman/kuchipudi/internal/sequence"
	"github.com/ayusman/kuchipudi/internal/smoothing"
	"github.com/ayusman/kuchipudi/internal/telemetry"
	"github.com/ayusman/kuchipudi/internal/tracker"
	"github.com/ayusman/kuchipudi/internal/trajectory"
)

// Config enumerates every tunable knob the pipeline exposes, matching the
// configuration surface of the outbound interface.
type Config struct {
	MaxHands int

	SmoothingWindow  int
	CooldownSeconds  float64
	MinConfidence    float64
	ThresholdMin     float64
	ThresholdMax     float64
	ThresholdRate    float64

	TrackerMaxDistance     float64
	TrackerTimeoutSeconds  float64

	SequenceHistoryMax        int
	SequenceCooldownSeconds   float64

	TrajectoryWindowSeconds     float64
	TrajectoryMinPathLength     float64
	TrajectoryVelocityThreshold float64
	TrajectoryStillFrames       int
	TrajectoryResamplePoints    int
	DTWBand                     int
	TrajectoryCooldownSeconds   float64

	ProfilingEnabled bool
}

// DefaultConfig returns the pipeline's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxHands: 2,

		SmoothingWindow: 5,
		CooldownSeconds: 0.5,
		MinConfidence:   0.6,
		ThresholdMin:    0.4,
		ThresholdMax:    0.95,
		ThresholdRate:   0.02,

		TrackerMaxDistance:    0.3,
		TrackerTimeoutSeconds: 0.5,

		SequenceHistoryMax:      20,
		SequenceCooldownSeconds: 1.0,

		TrajectoryWindowSeconds:     2.0,
		TrajectoryMinPathLength:     0.08,
		TrajectoryVelocityThreshold: 0.005,
		TrajectoryStillFrames:       5,
		TrajectoryResamplePoints:    32,
		DTWBand:                     10,
		TrajectoryCooldownSeconds:   1.0,

		ProfilingEnabled: true,
	}
}

// Engine drives one landmark bundle at a time through the full pipeline,
// producing the events it wires up to transport, storage, and plugins.
type Engine struct {
	cfg Config

	registry   *pose.Registry
	tracker    *tracker.Tracker
	seq        *sequence.Detector
	traj       *trajectory.Tracker
	bimanual   *bimanual.Detector
	painter    *canvas.Painter
	profiler   *telemetry.Profiler
	metrics    *telemetry.Metrics

	windows    map[int64]*smoothing.Window
	thresholds *smoothing.AdaptiveThresholds
	cooldowns  *smoothing.CooldownGate

	frameTimes []float64
	frameCount int64
}

// statsFrameTimesWindow bounds how many recent frame latencies feed the
// rolling fps/latency average a StatsEvent reports.
const statsFrameTimesWindow = 30

// statsEmitInterval is how often, in frames, a StatsEvent is emitted.
const statsEmitInterval = 10

// New wires every pipeline component from cfg using the built-in pose,
// sequence, and trajectory template sets.
func New(cfg Config) *Engine {
	e := &Engine{
		cfg:      cfg,
		registry: pose.DefaultRegistry(),
		tracker: tracker.New(tracker.Config{
			MaxMatchDistance: cfg.TrackerMaxDistance,
			TimeoutMs:        int64(cfg.TrackerTimeoutSeconds * 1000),
		}),
		seq: sequence.NewDetector(cfg.SequenceHistoryMax, cfg.SequenceCooldownSeconds),
		traj: trajectory.New(trajectory.Config{
			WindowSeconds:     cfg.TrajectoryWindowSeconds,
			MinPathLength:     cfg.TrajectoryMinPathLength,
			VelocityThreshold: cfg.TrajectoryVelocityThreshold,
			StillFrames:       cfg.TrajectoryStillFrames,
			ResamplePoints:    cfg.TrajectoryResamplePoints,
			DTWWindow:         cfg.DTWBand,
			CooldownSeconds:   cfg.TrajectoryCooldownSeconds,
		}),
		bimanual: bimanual.NewDetector(),
		painter:  canvas.NewPainter(),
		profiler: telemetry.NewProfiler(cfg.ProfilingEnabled),
		metrics:  telemetry.NewMetrics(),
		windows:  make(map[int64]*smoothing.Window),
		thresholds: smoothing.NewAdaptiveThresholds(smoothing.ThresholdConfig{
			Base: cfg.MinConfidence,
			Min:  cfg.ThresholdMin,
			Max:  cfg.ThresholdMax,
			Rate: cfg.ThresholdRate,
		}),
		cooldowns: smoothing.NewCooldownGate(cfg.CooldownSeconds),
	}
	for _, t := range sequence.DefaultTemplates() {
		e.seq.Register(t)
	}
	for _, t := range trajectory.DefaultTemplates(cfg.TrajectoryResamplePoints) {
		e.traj.Register(t)
	}
	return e
}

// RegisterPose adds a pose definition to the live classifier, letting a
// caller load persisted custom poses on top of the built-in set. An earlier
// definition with the same name is not replaced: both are evaluated, and on
// equal confidence the earlier one wins.
func (e *Engine) RegisterPose(d pose.Definition) { e.registry.Register(d) }

// RegisterSequence adds an ordered-pose sequence template. An earlier
// template with the same name is not replaced; when both complete on the
// same frame, only the earlier one is reported.
func (e *Engine) RegisterSequence(t sequence.Template) { e.seq.Register(t) }

// RegisterTrajectory adds a spatial trajectory template. An earlier
// template with the same name is not replaced; both are scored, and on an
// equal score the earlier one wins.
func (e *Engine) RegisterTrajectory(t trajectory.Template) { e.traj.Register(t) }

// Metrics exposes the engine's metrics registry, for a /metrics endpoint
// or a tray tooltip to read.
func (e *Engine) Metrics() *telemetry.Metrics { return e.metrics }

// Profiler exposes the engine's stage profiler.
func (e *Engine) Profiler() *telemetry.Profiler { return e.profiler }

// Now is a monotonic clock source the engine's profiler uses; callers
// inject one (e.g. time.Since(epoch).Seconds) rather than the engine
// calling time.Now directly, so ProcessFrame stays deterministic for tests.
type Now func() float64

// ProcessFrame runs one landmark bundle through the full pipeline and
// returns the events it produced, in emission order.
func (e *Engine) ProcessFrame(bundle landmark.Bundle, now Now) []Event {
	stop := e.profiler.Track("total", now)
	defer stop()

	if err := bundle.Validate(); err != nil {
		e.metrics.RecordMalformedInput()
		return nil
	}

	frameStart := now()
	timeSec := float64(bundle.Timestamp) / 1000.0

	hands := bundle.Hands
	if e.cfg.MaxHands > 0 && len(hands) > e.cfg.MaxHands {
		hands = hands[:e.cfg.MaxHands]
	}

	stopNorm := e.profiler.Track("normalization", now)
	normalized := make([]detector.HandLandmarks, len(hands))
	for i := range hands {
		normalized[i] = *hands[i].Normalize()
	}
	stopNorm()

	stopDetect := e.profiler.Track("detection", now)
	tracks := e.tracker.Update(normalized, int64(timeSec*1000))
	stopDetect()

	var events []Event
	handsDetected := 0

	for i, tr := range tracks {
		if tr == nil {
			continue
		}
		handsDetected++
		rawHand := hands[i]

		stopClassify := e.profiler.Track("classification", now)
		poseName, confidence, ok := e.registry.Classify(&tr.Hand)
		if !ok {
			stopClassify()
			continue
		}
		threshold := e.thresholds.Threshold(poseName)
		if confidence < threshold {
			stopClassify()
			continue
		}

		window := e.windows[tr.ID]
		if window == nil {
			window = smoothing.NewWindow(e.cfg.SmoothingWindow)
			e.windows[tr.ID] = window
		}
		window.Push(poseName)
		smoothed, hasMajority := window.Smoothed()
		if !hasMajority {
			smoothed = poseName
		}

		wasStable := smoothed == poseName
		e.thresholds.Update(poseName, wasStable)
		stopClassify()

		allowed := e.cooldowns.Allow(tr.ID, smoothed, timeSec)
		if allowed {
			events = append(events, NewGestureEvent(smoothed, confidence, tr.ID, timeSec))
			e.metrics.IncGesture(smoothed)
		}

		stopSeq := e.profiler.Track("sequence_detection", now)
		for _, se := range e.seq.Feed(tr.ID, smoothed, timeSec) {
			events = append(events, NewSequenceEvent(se.SequenceName, se.Poses, se.Duration, se.Timestamp))
			e.metrics.IncSequence(se.SequenceName)
		}
		stopSeq()

		stopAction := e.profiler.Track("action_dispatch", now)
		centroid := landmark.Centroid(&rawHand)
		if te, ok := e.traj.Feed(tr.ID, trajectory.Point2{X: centroid.X, Y: centroid.Y}, timeSec); ok {
			events = append(events, NewTrajectoryEvent(te.Name, te.Score, tr.ID, te.Timestamp))
			e.metrics.IncTrajectory(te.Name)
		}

		fingertip := canvas.Point2{X: rawHand.Points[detector.IndexTip].X, Y: rawHand.Points[detector.IndexTip].Y}
		cmds := e.painter.Feed(tr.ID, smoothed, fingertip, timeSec)
		if len(cmds) > 0 {
			events = append(events, NewCanvasCommandsEvent(convertCommands(cmds)))
		}
		stopAction()
	}

	if len(hands) >= 2 {
		for _, be := range e.bimanual.Feed(hands[:2], timeSec) {
			events = append(events, NewBimanualEvent(be.Gesture, be.Value, be.Confidence, be.Timestamp))
			e.metrics.IncBimanual(be.Gesture)
		}
	}

	latency := now() - frameStart
	e.metrics.ObserveFrameLatency(latency, handsDetected)

	e.frameTimes = append(e.frameTimes, latency)
	if len(e.frameTimes) > statsFrameTimesWindow {
		e.frameTimes = e.frameTimes[len(e.frameTimes)-statsFrameTimesWindow:]
	}
	e.frameCount++
	if e.frameCount%statsEmitInterval == 0 {
		avg := averageFloat(e.frameTimes)
		fps := 0.0
		if avg > 0 {
			fps = 1.0 / avg
		}
		events = append(events, NewStatsEvent(fps, avg*1000, handsDetected))
	}

	return events
}

func averageFloat(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func convertCommands(cmds []canvas.Command) []DrawCommand {
	out := make([]DrawCommand, 0, len(cmds))
	for _, c := range cmds {
		switch c.Kind {
		case canvas.CommandLine:
			out = append(out, DrawCommand{
				Kind:  "line",
				X1:    round1(c.From.X),
				Y1:    round1(c.From.Y),
				X2:    round1(c.To.X),
				Y2:    round1(c.To.Y),
				Color: c.Color,
				Width: canvas.LineWidth,
			})
		case canvas.CommandErase:
			out = append(out, DrawCommand{
				Kind:   "erase",
				X:      round1(c.From.X),
				Y:      round1(c.From.Y),
				Radius: canvas.EraseRadius,
			})
		case canvas.CommandClear:
			out = append(out, DrawCommand{Kind: "clear"})
		case canvas.CommandColor:
			out = append(out, DrawCommand{Kind: "colour", Color: c.Color})
		}
	}
	return out
}
