package telemetry

import "testing"

func TestProfiler_DisabledIsNoop(t *testing.T) {
	p := NewProfiler(false)
	stop := p.Track("classification", func() float64 { return 1.0 })
	stop()

	stats := p.Stats("classification")
	if stats.CallCount != 0 {
		t.Errorf("expected no recorded calls for a disabled profiler, got %d", stats.CallCount)
	}
}

func TestProfiler_RecordsStats(t *testing.T) {
	p := NewProfiler(true)
	p.Record("classification", 10)
	p.Record("classification", 20)
	p.Record("classification", 30)

	stats := p.Stats("classification")
	if stats.CallCount != 3 {
		t.Errorf("expected 3 calls, got %d", stats.CallCount)
	}
	if stats.AvgMs != 20 {
		t.Errorf("expected avg 20, got %f", stats.AvgMs)
	}
	if stats.MinMs != 10 || stats.MaxMs != 30 {
		t.Errorf("expected min 10 max 30, got min=%f max=%f", stats.MinMs, stats.MaxMs)
	}
}

func TestProfiler_WindowCapsSamples(t *testing.T) {
	p := NewProfiler(true)
	for i := 0; i < windowSize+10; i++ {
		p.Record("total", float64(i))
	}
	stats := p.Stats("total")
	if stats.CallCount != windowSize+10 {
		t.Errorf("expected call count to track total calls regardless of window, got %d", stats.CallCount)
	}
	if stats.MinMs != 10 {
		t.Errorf("expected window to have dropped the first 10 samples, min=%f", stats.MinMs)
	}
}

func TestMetrics_RenderContainsExpectedSeries(t *testing.T) {
	m := NewMetrics()
	m.SetUptime(42.0)
	m.IncGesture("fist")
	m.IncGesture("fist")
	m.ObserveFrameLatency(0.015, 2)
	m.SetActiveConnections(3)

	out := m.Render()

	for _, want := range []string{
		"gesture_engine_uptime_seconds 42",
		`gesture_engine_gestures_total{gesture="fist"} 2`,
		"gesture_engine_frame_latency_seconds_bucket",
		"gesture_engine_frames_total 1",
		"gesture_engine_active_connections 3",
	} {
		if !contains(out, want) {
			t.Errorf("expected render output to contain %q", want)
		}
	}
}

func TestMetrics_HandDetectionRateEMA(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 5; i++ {
		m.ObserveFrameLatency(0.01, 1)
	}
	if m.handDetectionRateEMA <= 0 {
		t.Error("expected a positive EMA after several frames with hands detected")
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
