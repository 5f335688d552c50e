package model

// AlertType is the severity class of a notification.
type AlertType string

const (
	AlertInfo    AlertType = "info"
	AlertWarning AlertType = "warning"
	AlertDanger  AlertType = "danger"
	AlertSuccess AlertType = "success"
)

// Alert is a single notification record. Title doubles as the dedup key for
// the engine's cooldown tracking.
type Alert struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp string    `json:"timestamp"` // RFC3339
	Read      bool      `json:"read"`
}
