package model

// PumpStatus reflects the controls document's pump field.
type PumpStatus string

const (
	PumpRunning PumpStatus = "running"
	PumpStopped PumpStatus = "stopped"
	// PumpError is kept for API compatibility with the dashboard schema.
	// No mapping path derives it from the remote payload.
	PumpError PumpStatus = "error"
)

// ControlMode selects who drives the pump.
type ControlMode string

const (
	ModeAutomatic ControlMode = "automatic"
	ModeManual    ControlMode = "manual"
	ModeScheduled ControlMode = "scheduled"
)

// NetworkSignal is the coarse connectivity indicator shown on the dashboard.
type NetworkSignal string

const (
	SignalStrong NetworkSignal = "strong"
	SignalMedium NetworkSignal = "medium"
	SignalWeak   NetworkSignal = "weak"
)

// SystemStatus is the pump/control snapshot derived from the remote controls
// object. It is recomputed from every poll response, never independently
// mutated between polls, except for the optimistic pump toggle which is
// compensated on write failure.
type SystemStatus struct {
	Uptime        float64       `json:"uptime"`      // %
	PumpStatus    PumpStatus    `json:"pumpStatus"`
	PumpRuntime   float64       `json:"pumpRuntime"` // accumulated minutes
	ControlMode   ControlMode   `json:"controlMode"`
	NetworkSignal NetworkSignal `json:"networkSignal"`
	DataUsage     float64       `json:"dataUsage"` // MB
}
