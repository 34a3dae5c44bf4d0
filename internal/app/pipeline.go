package app

import (
	"log"
	"time"

	"github.com/ayusman/kuchipudi/internal/engine"
	"github.com/ayusman/kuchipudi/internal/landmark"
	"github.com/ayusman/kuchipudi/internal/plugin"
	"github.com/ayusman/kuchipudi/internal/store"
)

// runPipeline is the main detection loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (idleFPS=5)
// 2. On motion detected, switch to active mode (activeFPS=15)
// 3. Run hand detection
// 4. Feed the landmark bundle through the engine
// 5. Dispatch bound actions for every event the engine emits
// 6. After 2s no motion, switch back to idle mode
func (a *App) runPipeline() {
	// Track whether we're in active mode
	activeMode := false

	// Track the last motion detection time
	lastMotionTime := time.Now()

	// Frame interval based on current FPS
	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			// Skip processing if detection is disabled
			if !a.IsEnabled() {
				continue
			}

			// Read a frame from the camera
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				// Switch to active mode if not already
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				// Check if we should switch back to idle mode
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Skip further processing if not in active mode or no detector
			if !activeMode || a.detector == nil {
				frame.Close()
				continue
			}

			// Step 2: Hand detection
			hands, err := a.detector.Detect(frame)
			frame.Close() // Done with the frame

			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			if len(hands) == 0 {
				continue
			}

			// Step 3: Run the full recognition pipeline for this frame
			bundle := landmark.Bundle{Hands: hands, Timestamp: time.Now().UnixMilli()}
			events := a.engine.ProcessFrame(bundle, monotonicNow)
			if len(events) == 0 {
				continue
			}

			if a.config.OnEvents != nil {
				a.config.OnEvents(events)
			}

			for _, evt := range events {
				a.executeAction(evt)
			}
		}
	}
}

// executeAction looks up the plugin action bound to an event's category
// and binding name, and dispatches it asynchronously if one is bound and
// enabled.
func (a *App) executeAction(evt engine.Event) {
	if a.config.Store == nil {
		return
	}

	category, bindingName := bindingFor(evt)
	if bindingName == "" {
		return
	}

	action, err := a.config.Store.Actions().GetByBinding(category, bindingName)
	if err != nil {
		log.Printf("Error looking up action: %v", err)
		return
	}
	if action == nil || !action.Enabled {
		return // No action bound or disabled - silent skip
	}

	plug, err := a.pluginMgr.Get(action.PluginName)
	if err != nil {
		log.Printf("Plugin not found: %s", action.PluginName)
		return
	}

	req := &plugin.Request{
		Action:  action.ActionName,
		Gesture: bindingName,
		Config:  action.Config,
	}

	// Execute async to not block pipeline
	go func() {
		resp, err := a.pluginExec.Execute(plug, req)
		if err != nil {
			log.Printf("Plugin execution failed: %v", err)
			return
		}
		if !resp.Success {
			log.Printf("Plugin returned error: %s", resp.Error)
		}
	}()
}

// bindingFor maps an engine event to the (category, binding name) pair
// that actions are bound against. Events with no meaningful binding
// (canvas commands, stats) return an empty binding name.
func bindingFor(evt engine.Event) (store.Category, string) {
	switch e := evt.(type) {
	case engine.GestureEvent:
		return store.CategoryGesture, e.Gesture
	case engine.SequenceEvent:
		return store.CategorySequence, e.Sequence
	case engine.TrajectoryEvent:
		return store.CategoryTrajectory, e.Name
	case engine.BimanualEvent:
		return store.CategoryBimanual, e.Gesture
	default:
		return "", ""
	}
}
