// Package tray provides a macOS system tray interface for the Kuchipudi gesture recognition system.
package tray

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/getlantern/systray"

	"github.com/ayusman/kuchipudi/internal/engine"
)

// Tray represents the macOS system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()
	enabled    bool
	mu         sync.RWMutex

	lastLabel string
	lastAt    time.Time

	// Menu items stored for later updates
	menuToggle    *systray.MenuItem
	menuLastEvent *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	// Set the tray title and tooltip
	systray.SetTitle("Kuchipudi")
	systray.SetTooltip("Kuchipudi Gesture Recognition")

	// Create menu items
	t.menuToggle = systray.AddMenuItem("● Enabled", "Toggle gesture recognition")
	systray.AddSeparator()

	t.menuLastEvent = systray.AddMenuItem("Last: none", "Most recent recognized event")
	t.menuLastEvent.Disable()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Kuchipudi")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
// It performs cleanup tasks.
func (t *Tray) onExit() {
	// Cleanup resources if needed
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	// Update menu item text based on new state
	if enabled {
		t.menuToggle.SetTitle("● Enabled")
	} else {
		t.menuToggle.SetTitle("○ Disabled")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastEvent updates the menu's "most recent event" line from any of
// the engine's four recognized-event categories (gesture, sequence,
// trajectory, bimanual). Canvas and stats events carry no gesture name
// and are ignored.
func (t *Tray) SetLastEvent(evt engine.Event) {
	label, ok := describeEvent(evt)
	if !ok {
		return
	}

	t.mu.Lock()
	t.lastLabel = label
	t.lastAt = time.Now()
	item := t.menuLastEvent
	t.mu.Unlock()

	if item != nil {
		item.SetTitle("Last: " + label + " (" + humanize.Time(time.Now()) + ")")
	}
}

// describeEvent renders an engine event as a short human-readable label,
// or false if the event has no gesture-like name to show.
func describeEvent(evt engine.Event) (string, bool) {
	switch e := evt.(type) {
	case engine.GestureEvent:
		return e.Gesture, true
	case engine.SequenceEvent:
		return e.Sequence, true
	case engine.TrajectoryEvent:
		return e.Name, true
	case engine.BimanualEvent:
		return e.Gesture, true
	default:
		return "", false
	}
}

// LastEvent returns the most recently displayed event label and when it
// was recorded, for callers that want to surface it outside the tray
// menu (e.g. a CLI banner).
func (t *Tray) LastEvent() (label string, at time.Time) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastLabel, t.lastAt
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
