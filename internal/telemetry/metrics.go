package telemetry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// HistogramBuckets are the latency boundaries (seconds) used for the
// frame-latency histogram.
var HistogramBuckets = []float64{0.001, 0.002, 0.005, 0.01, 0.02, 0.033, 0.05, 0.1}

const detectionRateEMAAlpha = 0.05

// Metrics is a small Prometheus-text-exposition registry purpose-built for
// the gesture engine's fixed metric set, rather than a general client
// library: the engine exposes a small, closed set of named series and
// rendering them directly avoids pulling in a full client dependency.
type Metrics struct {
	mu sync.Mutex

	startUptime          float64
	lastUptime           float64
	gestureCounts        map[string]int64
	sequenceCounts       map[string]int64
	trajectoryCounts     map[string]int64
	bimanualCounts       map[string]int64
	frameLatencyBuckets  []int64
	frameLatencySum      float64
	frameLatencyCount    int64
	framesTotal          int64
	handsDetectedTotal   int64
	handDetectionRateEMA float64
	activeConnections    int
	malformedInputTotal  int64
}

// NewMetrics creates an empty metrics registry.
func NewMetrics() *Metrics {
	return &Metrics{
		gestureCounts:       make(map[string]int64),
		sequenceCounts:      make(map[string]int64),
		trajectoryCounts:    make(map[string]int64),
		bimanualCounts:      make(map[string]int64),
		frameLatencyBuckets: make([]int64, len(HistogramBuckets)),
	}
}

// SetUptime records the current process uptime in seconds.
func (m *Metrics) SetUptime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUptime = seconds
}

// IncGesture increments the counter for a recognised pose gesture.
func (m *Metrics) IncGesture(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gestureCounts[name]++
}

// IncSequence increments the counter for a recognised pose sequence.
func (m *Metrics) IncSequence(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequenceCounts[name]++
}

// IncTrajectory increments the counter for a recognised trajectory.
func (m *Metrics) IncTrajectory(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trajectoryCounts[name]++
}

// IncBimanual increments the counter for a recognised two-hand gesture.
func (m *Metrics) IncBimanual(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bimanualCounts[name]++
}

// ObserveFrameLatency records one frame's end-to-end processing latency,
// in seconds, into the histogram and updates the hand-detection-rate EMA.
func (m *Metrics) ObserveFrameLatency(seconds float64, handsDetected int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, bound := range HistogramBuckets {
		if seconds <= bound {
			m.frameLatencyBuckets[i]++
			break
		}
	}
	m.frameLatencySum += seconds
	m.frameLatencyCount++
	m.framesTotal++

	if handsDetected > 0 {
		m.handsDetectedTotal += int64(handsDetected)
	}
	observed := 0.0
	if handsDetected > 0 {
		observed = 1.0
	}
	m.handDetectionRateEMA = (1-detectionRateEMAAlpha)*m.handDetectionRateEMA + detectionRateEMAAlpha*observed
}

// RecordMalformedInput increments the counter for frames dropped before
// entering the pipeline due to a failed landmark.Bundle.Validate check.
func (m *Metrics) RecordMalformedInput() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.malformedInputTotal++
}

// SetActiveConnections records the current number of connected stream
// subscribers.
func (m *Metrics) SetActiveConnections(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeConnections = n
}

// Render produces the Prometheus text-exposition output for all tracked
// series.
func (m *Metrics) Render() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder

	writeGauge(&b, "gesture_engine_uptime_seconds", "Process uptime in seconds.", m.lastUptime)

	writeCounterMap(&b, "gesture_engine_gestures_total", "Recognised pose gestures.", "gesture", m.gestureCounts)
	writeCounterMap(&b, "gesture_engine_sequences_total", "Recognised pose sequences.", "sequence", m.sequenceCounts)
	writeCounterMap(&b, "gesture_engine_trajectories_total", "Recognised trajectories.", "trajectory", m.trajectoryCounts)
	writeCounterMap(&b, "gesture_engine_bimanual_total", "Recognised bimanual gestures.", "gesture", m.bimanualCounts)

	fmt.Fprintf(&b, "# HELP gesture_engine_frame_latency_seconds Per-frame processing latency.\n")
	fmt.Fprintf(&b, "# TYPE gesture_engine_frame_latency_seconds histogram\n")
	cumulative := int64(0)
	for i, bound := range HistogramBuckets {
		cumulative += m.frameLatencyBuckets[i]
		fmt.Fprintf(&b, "gesture_engine_frame_latency_seconds_bucket{le=\"%s\"} %d\n", formatBound(bound), cumulative)
	}
	fmt.Fprintf(&b, "gesture_engine_frame_latency_seconds_bucket{le=\"+Inf\"} %d\n", m.frameLatencyCount)
	fmt.Fprintf(&b, "gesture_engine_frame_latency_seconds_sum %s\n", strconv.FormatFloat(m.frameLatencySum, 'f', -1, 64))
	fmt.Fprintf(&b, "gesture_engine_frame_latency_seconds_count %d\n", m.frameLatencyCount)

	writeCounter(&b, "gesture_engine_frames_total", "Total frames processed.", m.framesTotal)
	writeCounter(&b, "gesture_engine_hands_detected_total", "Total hands detected across all frames.", m.handsDetectedTotal)
	writeGauge(&b, "gesture_engine_hand_detection_rate", "Exponential moving average of per-frame hand detection.", m.handDetectionRateEMA)
	writeGauge(&b, "gesture_engine_active_connections", "Currently connected stream subscribers.", float64(m.activeConnections))
	writeCounter(&b, "gesture_engine_malformed_frames_total", "Frames dropped before entering the pipeline.", m.malformedInputTotal)

	return b.String()
}

func writeGauge(b *strings.Builder, name, help string, value float64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %s\n", name, strconv.FormatFloat(value, 'f', -1, 64))
}

func writeCounter(b *strings.Builder, name, help string, value int64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s counter\n", name)
	fmt.Fprintf(b, "%s %d\n", name, value)
}

func writeCounterMap(b *strings.Builder, name, help, label string, values map[string]int64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
