package model

import "time"

// TemperatureUnit is the display unit preference.
type TemperatureUnit string

const (
	UnitCelsius    TemperatureUnit = "celsius"
	UnitFahrenheit TemperatureUnit = "fahrenheit"
)

// ScheduledSettings configures the daily pump window used in scheduled mode.
type ScheduledSettings struct {
	Enabled         bool   `json:"enabled"`
	StartTime       string `json:"startTime"` // "HH:MM"
	EndTime         string `json:"endTime"`   // "HH:MM"
	DurationMinutes int    `json:"durationMinutes"`
}

// Settings holds the user-configurable thresholds and mode configuration.
// One active instance process-wide, owned by the coordinator.
type Settings struct {
	SoundAlerts       bool              `json:"soundAlerts"`
	PushNotifications bool              `json:"pushNotifications"`
	MoistureThreshold float64           `json:"moistureThreshold"` // %
	BatteryThreshold  float64           `json:"batteryThreshold"`  // %
	TemperatureUnit   TemperatureUnit   `json:"temperatureUnit"`
	PollInterval      time.Duration     `json:"pollInterval"`
	DarkMode          bool              `json:"darkMode"`
	ControlMode       ControlMode       `json:"controlMode"`
	ScheduledSettings ScheduledSettings `json:"scheduledSettings"`

	AirQualityThreshold      float64 `json:"airQualityThreshold"`      // AQI
	TemperatureHighThreshold float64 `json:"temperatureHighThreshold"` // °C
	TemperatureLowThreshold  float64 `json:"temperatureLowThreshold"`  // °C
	HumidityHighThreshold    float64 `json:"humidityHighThreshold"`    // %
	HumidityLowThreshold     float64 `json:"humidityLowThreshold"`     // %
	WaterLevelLowThreshold   float64 `json:"waterLevelLowThreshold"`   // %
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		SoundAlerts:       true,
		PushNotifications: true,
		MoistureThreshold: 30,
		BatteryThreshold:  20,
		TemperatureUnit:   UnitCelsius,
		PollInterval:      5 * time.Second,
		ControlMode:       ModeAutomatic,
		ScheduledSettings: ScheduledSettings{
			StartTime:       "08:00",
			EndTime:         "18:00",
			DurationMinutes: 30,
		},
		AirQualityThreshold:      150,
		TemperatureHighThreshold: 35,
		TemperatureLowThreshold:  5,
		HumidityHighThreshold:    80,
		HumidityLowThreshold:     20,
		WaterLevelLowThreshold:   20,
	}
}
