package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/climaneer/climaneer/internal/model"
)

type fakeController struct {
	mu        sync.Mutex
	settings  model.Settings
	status    model.SystemStatus
	toggles   []bool
	overrides int
	toggleErr error
}

func (f *fakeController) TogglePump(_ context.Context, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toggleErr != nil {
		return f.toggleErr
	}
	f.toggles = append(f.toggles, on)
	if on {
		f.status.PumpStatus = model.PumpRunning
	} else {
		f.status.PumpStatus = model.PumpStopped
	}
	return nil
}

func (f *fakeController) ClearOverride(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides++
	return nil
}

func (f *fakeController) Settings() model.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

func (f *fakeController) Status() model.SystemStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeController) snapshot() ([]bool, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.toggles...), f.overrides
}

func scheduledController(start, end string, duration int) *fakeController {
	s := model.DefaultSettings()
	s.ControlMode = model.ModeScheduled
	s.ScheduledSettings = model.ScheduledSettings{
		Enabled: true, StartTime: start, EndTime: end, DurationMinutes: duration,
	}
	return &fakeController{settings: s, status: model.SystemStatus{PumpStatus: model.PumpStopped}}
}

func TestInWindowNonWrapping(t *testing.T) {
	day := func(h, m int) time.Time {
		return time.Date(2026, 3, 1, h, m, 0, 0, time.UTC)
	}
	cases := []struct {
		now  time.Time
		want bool
	}{
		{day(12, 0), true},
		{day(8, 0), true},
		{day(18, 0), true},
		{day(7, 59), false},
		{day(18, 1), false},
	}
	for _, tc := range cases {
		if got := InWindow(tc.now, "08:00", "18:00"); got != tc.want {
			t.Errorf("InWindow(%s, 08:00, 18:00) = %v, want %v", tc.now.Format("15:04"), got, tc.want)
		}
	}
}

func TestInWindowSpansMidnight(t *testing.T) {
	day := func(h, m int) time.Time {
		return time.Date(2026, 3, 1, h, m, 0, 0, time.UTC)
	}
	cases := []struct {
		now  time.Time
		want bool
	}{
		{day(23, 30), true},
		{day(2, 0), true},
		{day(12, 0), false},
	}
	for _, tc := range cases {
		if got := InWindow(tc.now, "22:00", "04:00"); got != tc.want {
			t.Errorf("InWindow(%s, 22:00, 04:00) = %v, want %v", tc.now.Format("15:04"), got, tc.want)
		}
	}
}

func TestInWindowRejectsBadBounds(t *testing.T) {
	now := time.Now()
	for _, bad := range []struct{ start, end string }{
		{"", "18:00"},
		{"08:00", ""},
		{"8am", "18:00"},
		{"25:00", "18:00"},
		{"08:61", "18:00"},
	} {
		if InWindow(now, bad.start, bad.end) {
			t.Errorf("InWindow accepted bounds %q..%q", bad.start, bad.end)
		}
	}
}

func TestCheckActivatesPumpInsideWindow(t *testing.T) {
	ctrl := scheduledController("08:00", "18:00", 30)
	s := New(ctrl, nil)

	s.check(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	toggles, _ := ctrl.snapshot()
	if len(toggles) != 1 || !toggles[0] {
		t.Fatalf("toggles = %v, want single on", toggles)
	}
	if !s.TimerPending() {
		t.Error("duration timer not armed after activation")
	}
}

func TestCheckDoesNothingOutsideWindow(t *testing.T) {
	ctrl := scheduledController("08:00", "18:00", 30)
	s := New(ctrl, nil)

	s.check(context.Background(), time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC))

	if toggles, _ := ctrl.snapshot(); len(toggles) != 0 {
		t.Errorf("toggles = %v, want none", toggles)
	}
}

func TestCheckIgnoresNonScheduledMode(t *testing.T) {
	ctrl := scheduledController("08:00", "18:00", 30)
	ctrl.settings.ControlMode = model.ModeAutomatic
	s := New(ctrl, nil)

	s.check(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	if toggles, _ := ctrl.snapshot(); len(toggles) != 0 {
		t.Errorf("toggles = %v, want none in automatic mode", toggles)
	}
}

func TestCheckIgnoresDisabledSchedule(t *testing.T) {
	ctrl := scheduledController("08:00", "18:00", 30)
	ctrl.settings.ScheduledSettings.Enabled = false
	s := New(ctrl, nil)

	s.check(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	if toggles, _ := ctrl.snapshot(); len(toggles) != 0 {
		t.Errorf("toggles = %v, want none when disabled", toggles)
	}
}

func TestCheckDoesNotReArmWhileTimerPending(t *testing.T) {
	ctrl := scheduledController("08:00", "18:00", 30)
	s := New(ctrl, nil)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.check(context.Background(), at)
	// Pump running and timer pending; further ticks must not act.
	s.check(context.Background(), at.Add(30*time.Second))
	s.check(context.Background(), at.Add(time.Minute))

	if toggles, _ := ctrl.snapshot(); len(toggles) != 1 {
		t.Errorf("toggles = %v, want single on", toggles)
	}
}

func TestFinishCycleTurnsPumpOffAndClearsOverride(t *testing.T) {
	ctrl := scheduledController("08:00", "18:00", 30)
	s := New(ctrl, nil)

	s.check(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	s.finishCycle(gen)

	toggles, overrides := ctrl.snapshot()
	if len(toggles) != 2 || toggles[1] {
		t.Fatalf("toggles = %v, want on then off", toggles)
	}
	if overrides != 1 {
		t.Errorf("override clears = %d, want 1", overrides)
	}
	if s.TimerPending() {
		t.Error("timer still pending after cycle finished")
	}
}

func TestFinishCycleStaleGenerationIsNoOp(t *testing.T) {
	ctrl := scheduledController("08:00", "18:00", 30)
	s := New(ctrl, nil)

	s.check(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.mu.Lock()
	stale := s.gen
	s.mu.Unlock()

	s.Reconfigure() // no change, timer stays
	ctrl.mu.Lock()
	ctrl.settings.ScheduledSettings.DurationMinutes = 5
	ctrl.mu.Unlock()
	s.Reconfigure() // config changed, timer cancelled

	s.finishCycle(stale)

	if toggles, _ := ctrl.snapshot(); len(toggles) != 1 {
		t.Errorf("stale timer acted: toggles = %v", toggles)
	}
}

func TestReconfigureCancelsTimerWhenPumpStopped(t *testing.T) {
	ctrl := scheduledController("08:00", "18:00", 30)
	s := New(ctrl, nil)

	s.check(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	if !s.TimerPending() {
		t.Fatal("timer not armed")
	}

	// Manual stop mid-cycle.
	ctrl.mu.Lock()
	ctrl.status.PumpStatus = model.PumpStopped
	ctrl.mu.Unlock()
	s.Reconfigure()

	if s.TimerPending() {
		t.Error("timer survived a mid-cycle pump stop")
	}
}

func TestReconfigureKeepsTimerOnUnrelatedChange(t *testing.T) {
	ctrl := scheduledController("08:00", "18:00", 30)
	s := New(ctrl, nil)

	s.check(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.Reconfigure()

	if !s.TimerPending() {
		t.Error("timer cancelled without a config or pump change")
	}
}

func TestReactivateDisabledLimitsWindowToOneCycle(t *testing.T) {
	ctrl := scheduledController("08:00", "18:00", 30)
	s := New(ctrl, nil)
	s.Reactivate = false
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.check(context.Background(), at)
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	s.finishCycle(gen)

	// Pump stopped, still inside the window.
	s.check(context.Background(), at.Add(time.Minute))
	toggles, _ := ctrl.snapshot()
	if len(toggles) != 2 {
		t.Fatalf("toggles = %v, want exactly one on/off cycle", toggles)
	}

	// Leaving and re-entering the window resets the latch.
	s.check(context.Background(), at.Add(7*time.Hour))
	s.check(context.Background(), at.Add(21*time.Hour))
	toggles, _ = ctrl.snapshot()
	if len(toggles) != 3 || !toggles[2] {
		t.Errorf("toggles = %v, want re-activation after window re-entry", toggles)
	}
}

func TestScheduledStartFailureDoesNotArmTimer(t *testing.T) {
	ctrl := scheduledController("08:00", "18:00", 30)
	ctrl.toggleErr = errors.New("down")
	s := New(ctrl, nil)

	s.check(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	if s.TimerPending() {
		t.Error("timer armed despite failed pump start")
	}
}
