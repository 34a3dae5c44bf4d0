package engine

import "math"

// Event is the sum type for everything the engine emits on its outbound
// stream. Each concrete type below corresponds to exactly one of the
// wire-level record shapes the transport layer serialises; every one
// carries its own "type" discriminator so json.Marshal needs no wrapper.
type Event interface {
	eventType() string
}

// GestureEvent reports a single hand's smoothed, cooldown-gated pose.
type GestureEvent struct {
	Type       string  `json:"type"`
	Gesture    string  `json:"gesture"`
	Confidence float64 `json:"confidence"`
	HandID     int64   `json:"hand_id"`
	Timestamp  float64 `json:"timestamp"`
}

func (GestureEvent) eventType() string { return "gesture" }

// NewGestureEvent builds a gesture event with rounded numeric fields.
func NewGestureEvent(gesture string, confidence float64, handID int64, timestamp float64) GestureEvent {
	return GestureEvent{Type: "gesture", Gesture: gesture, Confidence: round3(confidence), HandID: handID, Timestamp: round3(timestamp)}
}

// SequenceEvent reports a completed ordered pose transition.
type SequenceEvent struct {
	Type      string   `json:"type"`
	Sequence  string   `json:"sequence"`
	Gestures  []string `json:"gestures"`
	Duration  float64  `json:"duration"`
	Timestamp float64  `json:"timestamp"`
}

func (SequenceEvent) eventType() string { return "sequence" }

// NewSequenceEvent builds a sequence event with rounded numeric fields.
func NewSequenceEvent(name string, gestures []string, duration, timestamp float64) SequenceEvent {
	return SequenceEvent{Type: "sequence", Sequence: name, Gestures: gestures, Duration: round3(duration), Timestamp: round3(timestamp)}
}

// TrajectoryEvent reports a recognised spatial path.
type TrajectoryEvent struct {
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	HandID    int64   `json:"hand_id"`
	Timestamp float64 `json:"timestamp"`
}

func (TrajectoryEvent) eventType() string { return "trajectory" }

// NewTrajectoryEvent builds a trajectory event with rounded numeric fields.
func NewTrajectoryEvent(name string, score float64, handID int64, timestamp float64) TrajectoryEvent {
	return TrajectoryEvent{Type: "trajectory", Name: name, Score: round3(score), HandID: handID, Timestamp: round3(timestamp)}
}

// BimanualEvent reports a recognised two-hand gesture.
type BimanualEvent struct {
	Type       string  `json:"type"`
	Gesture    string  `json:"gesture"`
	Value      float64 `json:"value"`
	Confidence float64 `json:"confidence"`
	Timestamp  float64 `json:"timestamp"`
}

func (BimanualEvent) eventType() string { return "bimanual" }

// NewBimanualEvent builds a bimanual event with rounded numeric fields.
func NewBimanualEvent(gesture string, value, confidence, timestamp float64) BimanualEvent {
	return BimanualEvent{Type: "bimanual", Gesture: gesture, Value: round3(value), Confidence: round3(confidence), Timestamp: round3(timestamp)}
}

// DrawCommand is one wire-level canvas instruction. Field presence
// follows the command kind: line uses x1,y1,x2,y2,color,width; erase
// uses x,y,radius; clear and colour use only their own fields.
type DrawCommand struct {
	Kind   string  `json:"type"`
	X1     float64 `json:"x1,omitempty"`
	Y1     float64 `json:"y1,omitempty"`
	X2     float64 `json:"x2,omitempty"`
	Y2     float64 `json:"y2,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	Color  string  `json:"color,omitempty"`
	Width  float64 `json:"width,omitempty"`
}

// CanvasCommandsEvent batches the draw commands produced by one hand in
// one frame.
type CanvasCommandsEvent struct {
	Type     string        `json:"type"`
	Commands []DrawCommand `json:"commands"`
}

func (CanvasCommandsEvent) eventType() string { return "canvas_commands" }

// NewCanvasCommandsEvent wraps a batch of draw commands as an event.
func NewCanvasCommandsEvent(commands []DrawCommand) CanvasCommandsEvent {
	return CanvasCommandsEvent{Type: "canvas_commands", Commands: commands}
}

// StatsEvent reports aggregate frame-processing statistics.
type StatsEvent struct {
	Type          string  `json:"type"`
	FPS           float64 `json:"fps"`
	LatencyMs     float64 `json:"latency_ms"`
	HandsDetected int     `json:"hands_detected"`
}

func (StatsEvent) eventType() string { return "stats" }

// NewStatsEvent builds a stats event with rounded numeric fields.
func NewStatsEvent(fps, latencyMs float64, handsDetected int) StatsEvent {
	return StatsEvent{Type: "stats", FPS: round3(fps), LatencyMs: round3(latencyMs), HandsDetected: handsDetected}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
