package model

import "time"

// PumpAccounting carries the pump usage totals as an explicit value object.
// Transitions are pure: each returns the updated value and never touches
// shared state, so callers thread it through whatever lock already guards
// their status snapshot.
type PumpAccounting struct {
	TotalRuntime         time.Duration `json:"totalRuntime"`
	TotalWaterUsedLiters float64       `json:"totalWaterUsedLiters"`
	SessionStart         time.Time     `json:"sessionStart"`
}

// PumpStarted opens a runtime session. Starting an already-open session is a
// no-op so repeated "running" observations do not reset the start mark.
func (a PumpAccounting) PumpStarted(now time.Time) PumpAccounting {
	if !a.SessionStart.IsZero() {
		return a
	}
	a.SessionStart = now
	return a
}

// PumpStopped closes the current session and folds its duration into the
// total. Stopping without an open session is a no-op.
func (a PumpAccounting) PumpStopped(now time.Time) PumpAccounting {
	if a.SessionStart.IsZero() {
		return a
	}
	if d := now.Sub(a.SessionStart); d > 0 {
		a.TotalRuntime += d
	}
	a.SessionStart = time.Time{}
	return a
}

// AddFlow integrates a flow-rate observation (L/min) over the elapsed time
// since the previous observation.
func (a PumpAccounting) AddFlow(flowLpm float64, elapsed time.Duration) PumpAccounting {
	if flowLpm <= 0 || elapsed <= 0 {
		return a
	}
	a.TotalWaterUsedLiters += flowLpm * elapsed.Minutes()
	return a
}

// RuntimeMinutes reports the accumulated runtime including any open session.
func (a PumpAccounting) RuntimeMinutes(now time.Time) float64 {
	total := a.TotalRuntime
	if !a.SessionStart.IsZero() && now.After(a.SessionStart) {
		total += now.Sub(a.SessionStart)
	}
	return total.Minutes()
}
