// Package app provides the main application logic for the Kuchipudi gesture recognition system.
package app

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/ayusman/kuchipudi/internal/capture"
	"github.com/ayusman/kuchipudi/internal/detector"
	"github.com/ayusman/kuchipudi/internal/engine"
	"github.com/ayusman/kuchipudi/internal/plugin"
	"github.com/ayusman/kuchipudi/internal/pose"
	"github.com/ayusman/kuchipudi/internal/sequence"
	"github.com/ayusman/kuchipudi/internal/store"
	"github.com/ayusman/kuchipudi/internal/trajectory"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// EventSink receives every event the engine produces for a frame, in
// emission order. The transport (WebSocket hub), tray, and action
// dispatcher all subscribe through this single seam.
type EventSink func(events []engine.Event)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	PluginDir    string
	CameraID     int
	MotionThresh float64
	EngineConfig engine.Config
	OnEvents     EventSink
}

// App is the main application that orchestrates gesture detection and action execution.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	engine     *engine.Engine
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	enabled    bool
	mu         sync.RWMutex
	stopCh     chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	engineCfg := config.EngineConfig
	if engineCfg == (engine.Config{}) {
		engineCfg = engine.DefaultConfig()
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionDetector(motionThreshold),
		engine:     engine.New(engineCfg),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(5000), // 5 second timeout for plugin execution
		enabled:    false,
		stopCh:     nil,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// LoadDefinitions loads persisted pose, sequence, and trajectory
// definitions from the database and registers them with the engine after
// its built-in set. A persisted definition does not replace a built-in one
// with the same name: both stay registered, and where they tie the
// built-in one, registered first, wins.
func (a *App) LoadDefinitions() error {
	if a.config.Store == nil {
		return nil
	}

	poses, err := a.config.Store.Poses().List()
	if err != nil {
		return err
	}
	for _, rec := range poses {
		var def pose.Definition
		if err := json.Unmarshal([]byte(rec.Definition), &def); err != nil {
			log.Printf("Failed to decode pose definition %s: %v", rec.Name, err)
			continue
		}
		if def.Name == "" {
			def.Name = rec.Name
		}
		a.engine.RegisterPose(def)
	}

	sequences, err := a.config.Store.Sequences().List()
	if err != nil {
		return err
	}
	for _, rec := range sequences {
		var tmpl sequence.Template
		if err := json.Unmarshal([]byte(rec.Definition), &tmpl); err != nil {
			log.Printf("Failed to decode sequence template %s: %v", rec.Name, err)
			continue
		}
		if tmpl.Name == "" {
			tmpl.Name = rec.Name
		}
		a.engine.RegisterSequence(tmpl)
	}

	trajectories, err := a.config.Store.Trajectories().List()
	if err != nil {
		return err
	}
	for _, rec := range trajectories {
		var tmpl trajectory.Template
		if err := json.Unmarshal([]byte(rec.Definition), &tmpl); err != nil {
			log.Printf("Failed to decode trajectory template %s: %v", rec.Name, err)
			continue
		}
		if tmpl.Name == "" {
			tmpl.Name = rec.Name
		}
		a.engine.RegisterTrajectory(tmpl)
	}

	log.Printf("Loaded %d poses, %d sequences, %d trajectories from database", len(poses), len(sequences), len(trajectories))
	return nil
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	// Open the camera
	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(IdleFPS)

	// Create stop channel and start the pipeline
	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Signal the pipeline to stop
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	// Close the camera
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	// Close motion detector
	a.motion.Close()

	// Close the hand detector if set
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Engine returns the gesture recognition engine.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// epoch anchors the monotonic clock ProcessFrame's profiler expects.
var epoch = time.Now()

func monotonicNow() float64 {
	return time.Since(epoch).Seconds()
}
