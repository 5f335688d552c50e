// Package control owns the control mode, the pump state writes against the
// remote store, and the pump usage accounting.
package control

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/climaneer/climaneer/internal/metrics"
	"github.com/climaneer/climaneer/internal/model"
)

// ControlsWriter is the slice of the gateway the coordinator writes through.
type ControlsWriter interface {
	PatchControls(ctx context.Context, controls map[string]any) error
	PutControls(ctx context.Context, controls map[string]any) error
}

// Coordinator linearizes every control write behind one mutex so concurrent
// toggle and mode-switch calls cannot interleave their remote writes. Local
// mode changes land strictly after the remote write succeeds; the pump flag is
// the one optimistic exception and is rolled back on failure.
type Coordinator struct {
	mu         sync.Mutex
	writer     ControlsWriter
	settings   model.Settings
	status     model.SystemStatus
	accounting model.PumpAccounting
	onChange   []func()
}

func NewCoordinator(writer ControlsWriter, settings model.Settings) *Coordinator {
	return &Coordinator{
		writer:   writer,
		settings: settings,
		status: model.SystemStatus{
			PumpStatus:    model.PumpStopped,
			ControlMode:   settings.ControlMode,
			NetworkSignal: model.SignalWeak,
		},
	}
}

// OnChange registers a callback fired after every state mutation, outside the
// coordinator lock. The scheduler uses this to re-evaluate its configuration.
func (c *Coordinator) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

func (c *Coordinator) notify() {
	c.mu.Lock()
	fns := make([]func(), len(c.onChange))
	copy(fns, c.onChange)
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// TogglePump switches the pump on or off. The local pump status flips before
// the remote write; a failed write restores the pre-call value and returns the
// error.
func (c *Coordinator) TogglePump(ctx context.Context, on bool) error {
	state := "off"
	if on {
		state = "on"
	}

	c.mu.Lock()
	now := time.Now()
	prev := c.status.PumpStatus
	next := model.PumpStopped
	if on {
		next = model.PumpRunning
	}
	c.setPumpLocked(next, now)

	err := c.writer.PatchControls(ctx, map[string]any{
		"pump":                    on,
		"manual_override":         true,
		"mode":                    "manual",
		"last_manual_pump_change": now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		c.setPumpLocked(prev, time.Now())
		c.mu.Unlock()
		metrics.PumpToggles.WithLabelValues(state, "error").Inc()
		return fmt.Errorf("toggle pump %s: %w", state, err)
	}
	c.mu.Unlock()

	metrics.PumpToggles.WithLabelValues(state, "ok").Inc()
	log.Printf("[Coordinator] pump %s confirmed", state)
	c.notify()
	return nil
}

// SwitchToAutoMode clears the manual override and returns control to the
// remote store's own logic. The local mode changes only after the write
// succeeds.
func (c *Coordinator) SwitchToAutoMode(ctx context.Context) error {
	return c.switchMode(ctx, model.ModeAutomatic, map[string]any{
		"manual_override":  false,
		"mode":             "FIREBASE",
		"last_mode_change": time.Now().UTC().Format(time.RFC3339),
	})
}

// SwitchToManualMode takes the pump under manual control.
func (c *Coordinator) SwitchToManualMode(ctx context.Context) error {
	return c.switchMode(ctx, model.ModeManual, map[string]any{
		"manual_override":  true,
		"mode":             "MANUAL",
		"last_mode_change": time.Now().UTC().Format(time.RFC3339),
	})
}

func (c *Coordinator) switchMode(ctx context.Context, mode model.ControlMode, controls map[string]any) error {
	c.mu.Lock()
	err := c.writer.PatchControls(ctx, controls)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("switch to %s mode: %w", mode, err)
	}
	c.settings.ControlMode = mode
	c.status.ControlMode = mode
	c.mu.Unlock()

	log.Printf("[Coordinator] mode switched to %s", mode)
	c.notify()
	return nil
}

// SaveSettings replaces the local settings, then uploads the full controls
// document. The upload is best effort: the local settings stay applied even
// when it fails, and the error is returned for the caller's notification.
func (c *Coordinator) SaveSettings(ctx context.Context, s model.Settings) error {
	c.mu.Lock()
	c.settings = s
	c.status.ControlMode = s.ControlMode

	isManual := s.ControlMode == model.ModeManual
	isScheduled := s.ControlMode == model.ModeScheduled
	mode := "FIREBASE"
	switch {
	case isManual:
		mode = "manual"
	case isScheduled:
		mode = "scheduled"
	}
	controls := map[string]any{
		"pump":                   c.status.PumpStatus == model.PumpRunning,
		"manual_override":        isManual,
		"mode":                   mode,
		"last_settings_saved_at": time.Now().UTC().Format(time.RFC3339),
	}
	if isScheduled {
		controls["scheduled_start_time"] = s.ScheduledSettings.StartTime
		controls["scheduled_end_time"] = s.ScheduledSettings.EndTime
		controls["scheduled_duration_minutes"] = s.ScheduledSettings.DurationMinutes
		controls["scheduled_enabled"] = s.ScheduledSettings.Enabled
	}
	err := c.writer.PutControls(ctx, controls)
	c.mu.Unlock()

	c.notify()
	if err != nil {
		log.Printf("[Coordinator] settings sync failed: %v", err)
		return fmt.Errorf("sync settings: %w", err)
	}
	return nil
}

// ClearOverride is the scheduler's post-cycle cleanup write. Best effort.
func (c *Coordinator) ClearOverride(ctx context.Context) error {
	c.mu.Lock()
	err := c.writer.PatchControls(ctx, map[string]any{
		"manual_override": false,
		"mode":            "FIREBASE",
	})
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("clear override: %w", err)
	}
	return nil
}

// ApplyRemoteStatus folds a polled status into the coordinator. Pump state
// transitions drive the runtime accounting; the control mode follows the
// remote document.
func (c *Coordinator) ApplyRemoteStatus(s model.SystemStatus, now time.Time) {
	c.mu.Lock()
	c.setPumpLocked(s.PumpStatus, now)
	c.status.NetworkSignal = s.NetworkSignal
	c.status.Uptime = s.Uptime
	c.status.DataUsage = s.DataUsage
	if c.settings.ControlMode != model.ModeScheduled {
		c.status.ControlMode = s.ControlMode
	}
	c.mu.Unlock()
	c.notify()
}

// RecordFlow integrates a flow observation into the water usage total.
func (c *Coordinator) RecordFlow(flowLpm float64, elapsed time.Duration) {
	c.mu.Lock()
	if c.status.PumpStatus == model.PumpRunning {
		c.accounting = c.accounting.AddFlow(flowLpm, elapsed)
	}
	c.mu.Unlock()
}

func (c *Coordinator) setPumpLocked(next model.PumpStatus, now time.Time) {
	if c.status.PumpStatus == next {
		return
	}
	switch next {
	case model.PumpRunning:
		c.accounting = c.accounting.PumpStarted(now)
	case model.PumpStopped:
		c.accounting = c.accounting.PumpStopped(now)
	}
	c.status.PumpStatus = next
}

// Settings returns a copy of the active settings.
func (c *Coordinator) Settings() model.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Status returns a copy of the system status with the live runtime figure.
func (c *Coordinator) Status() model.SystemStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.status
	s.PumpRuntime = c.accounting.RuntimeMinutes(time.Now())
	return s
}

// Accounting returns a copy of the pump usage totals.
func (c *Coordinator) Accounting() model.PumpAccounting {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accounting
}

// PumpRuntimeMinutes reports accumulated pump runtime for the statistics view.
func (c *Coordinator) PumpRuntimeMinutes() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accounting.RuntimeMinutes(time.Now())
}
