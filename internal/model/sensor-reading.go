package model

import "time"

// SensorReading is one snapshot of every sensor channel, produced by the
// mapper on each successful poll. A reading is never mutated after creation;
// a new one replaces it on the next poll.
type SensorReading struct {
	ID               string  `json:"id"`
	Timestamp        string  `json:"timestamp"` // RFC3339
	SoilMoisture     float64 `json:"soilMoisture"`     // 0..100 %
	AirHumidity      float64 `json:"airHumidity"`      // 0..100 %
	WaterLevel       float64 `json:"waterLevel"`       // 0..100 %
	PH               float64 `json:"pH"`               // 0..14
	AirTemperature   float64 `json:"airTemperature"`   // °C
	WaterTemperature float64 `json:"waterTemperature"` // °C
	AirQuality       int     `json:"airQuality"`       // AQI, >=0
	FlowRate         float64 `json:"flowRate"`         // L/min
	Battery          float64 `json:"battery"`          // 0..100 %
}

// Time parses the reading timestamp. Readings with an unparseable timestamp
// report the zero time and are treated as expired by the trend store.
func (r SensorReading) Time() time.Time {
	t, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
