// Package scheduler runs the time-window pump automation used in scheduled
// mode.
package scheduler

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/climaneer/climaneer/internal/metrics"
	"github.com/climaneer/climaneer/internal/model"
)

// DefaultInterval is how often the window condition is re-evaluated.
const DefaultInterval = 30 * time.Second

// Controller is the slice of the coordinator the scheduler drives.
type Controller interface {
	TogglePump(ctx context.Context, on bool) error
	ClearOverride(ctx context.Context) error
	Settings() model.Settings
	Status() model.SystemStatus
}

// Scheduler checks every interval whether the configured window is active and
// the pump should run. Each activation arms a single one-shot timer that turns
// the pump back off after the configured duration; a generation counter keeps
// a cancelled timer from ever firing against newer state.
type Scheduler struct {
	ctrl     Controller
	notify   func(title, message string)
	interval time.Duration

	// Reactivate re-starts a cycle when the pump is found stopped while the
	// window is still active. Disabling it limits the window to one cycle.
	Reactivate bool

	mu        sync.Mutex
	timer     *time.Timer
	gen       int
	armedCfg  model.ScheduledSettings
	armedMode model.ControlMode
	cycleDone bool
	cancel    context.CancelFunc
}

func New(ctrl Controller, notify func(title, message string)) *Scheduler {
	if notify == nil {
		notify = func(string, string) {}
	}
	return &Scheduler{
		ctrl:       ctrl,
		notify:     notify,
		interval:   DefaultInterval,
		Reactivate: true,
	}
}

// Start launches the evaluation loop. The first check runs immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		s.check(ctx, time.Now())
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.check(ctx, now)
			}
		}
	}()
}

// Stop tears the loop down and cancels any pending duration timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.cancelTimerLocked()
	s.mu.Unlock()
}

// Reconfigure reacts to coordinator state changes. A pending duration timer is
// cancelled only when the schedule configuration it was armed under has
// changed, or when the pump has been stopped out from under it; an unrelated
// status update leaves the running cycle alone.
func (s *Scheduler) Reconfigure() {
	settings := s.ctrl.Settings()
	status := s.ctrl.Status()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return
	}
	if settings.ControlMode != s.armedMode || settings.ScheduledSettings != s.armedCfg {
		log.Print("[Scheduler] configuration changed, cancelling pending cycle timer")
		s.cancelTimerLocked()
		return
	}
	if status.PumpStatus != model.PumpRunning {
		log.Print("[Scheduler] pump stopped mid-cycle, cancelling pending cycle timer")
		s.cancelTimerLocked()
	}
}

func (s *Scheduler) check(ctx context.Context, now time.Time) {
	settings := s.ctrl.Settings()
	sched := settings.ScheduledSettings
	if settings.ControlMode != model.ModeScheduled || !sched.Enabled {
		return
	}

	within := InWindow(now, sched.StartTime, sched.EndTime)
	pumpRunning := s.ctrl.Status().PumpStatus == model.PumpRunning

	s.mu.Lock()
	if !within {
		s.cycleDone = false
		s.mu.Unlock()
		return
	}
	if s.timer != nil || pumpRunning || (s.cycleDone && !s.Reactivate) {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := s.ctrl.TogglePump(ctx, true); err != nil {
		log.Printf("[Scheduler] scheduled pump start failed: %v", err)
		return
	}
	metrics.ScheduledActivations.Inc()
	s.notify("Scheduled Pump Started",
		"Pump running until "+sched.EndTime+" (duration: "+strconv.Itoa(sched.DurationMinutes)+" min)")

	s.mu.Lock()
	s.armedMode = settings.ControlMode
	s.armedCfg = sched
	s.cycleDone = true
	if d := time.Duration(sched.DurationMinutes) * time.Minute; d > 0 {
		s.gen++
		gen := s.gen
		s.timer = time.AfterFunc(d, func() { s.finishCycle(gen) })
	}
	s.mu.Unlock()
}

// finishCycle is the duration timer's turn-off action. A stale generation
// means the timer was cancelled and re-armed concurrently; it must not act.
func (s *Scheduler) finishCycle(gen int) {
	s.mu.Lock()
	if gen != s.gen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.ctrl.TogglePump(ctx, false); err != nil {
		log.Printf("[Scheduler] scheduled pump stop failed: %v", err)
		return
	}
	s.notify("Scheduled Pump Stopped", "Scheduled cycle completed. Pump turned off.")
	// The pump-off already applied; clearing the override is best effort.
	if err := s.ctrl.ClearOverride(ctx); err != nil {
		log.Printf("[Scheduler] override clear failed: %v", err)
	}
}

func (s *Scheduler) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
		s.gen++
	}
}

// TimerPending reports whether a duration timer is armed.
func (s *Scheduler) TimerPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// InWindow reports whether now falls inside the [start, end] window, both
// given as "HH:MM". An end at or before the start means the window spans
// midnight. Unparseable bounds never match.
func InWindow(now time.Time, start, end string) bool {
	s, ok := parseHHMM(start)
	if !ok {
		return false
	}
	e, ok := parseHHMM(end)
	if !ok {
		return false
	}
	n := now.Hour()*3600 + now.Minute()*60 + now.Second()
	if e <= s {
		return n >= s || n <= e
	}
	return n >= s && n <= e
}

// parseHHMM converts "HH:MM" to seconds since midnight.
func parseHHMM(v string) (int, bool) {
	hh, mm, ok := strings.Cut(v, ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*3600 + m*60, true
}
