package model

// HistoryEntry records one successful poll for the history view and exports.
type HistoryEntry struct {
	ID        string        `json:"id"`
	Timestamp string        `json:"timestamp"`
	Sensors   SensorReading `json:"sensors"`
}
