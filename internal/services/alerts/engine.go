package alerts

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/climaneer/climaneer/internal/metrics"
	"github.com/climaneer/climaneer/internal/model"
	"github.com/climaneer/climaneer/pkg/cooldown"
)

const (
	// DefaultCooldown suppresses repeats of the same alert title.
	DefaultCooldown = time.Hour
	maxAlerts       = 200
)

// Engine evaluates sensor readings against the configured thresholds and keeps
// the bounded notification list. Safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	alerts  []model.Alert
	tracker *cooldown.Tracker
}

func NewEngine(period time.Duration) *Engine {
	if period <= 0 {
		period = DefaultCooldown
	}
	e := &Engine{tracker: cooldown.New(period, maxAlerts)}
	e.Push(model.AlertInfo, "System Started", "Dashboard initialized successfully", time.Now())
	return e
}

// Evaluate runs the threshold checks against a reading and records every alert
// that clears its cooldown. It returns the alerts fired by this call.
func (e *Engine) Evaluate(r model.SensorReading, s model.Settings, now time.Time) []model.Alert {
	var fired []model.Alert

	add := func(typ model.AlertType, title, message string) {
		if a, ok := e.push(typ, title, message, now); ok {
			fired = append(fired, a)
		}
	}

	if r.SoilMoisture < s.MoistureThreshold {
		add(model.AlertWarning, "Low Soil Moisture",
			fmt.Sprintf("Soil moisture is %.0f%%, below threshold %.0f%%", r.SoilMoisture, s.MoistureThreshold))
	}

	if r.Battery < s.BatteryThreshold {
		add(model.AlertWarning, "Low Battery",
			fmt.Sprintf("Sensor battery is %.0f%%, below %.0f%%", r.Battery, s.BatteryThreshold))
	}

	// The pH band is fixed, not user-configurable.
	if r.PH < 6.0 || r.PH > 8.0 {
		add(model.AlertWarning, "pH Out of Range",
			fmt.Sprintf("pH level is %.1f, expected between 6.0 and 8.0", r.PH))
	}

	if aqi := float64(r.AirQuality); aqi > s.AirQualityThreshold {
		add(model.AlertDanger, "Poor Air Quality",
			fmt.Sprintf("Air quality index is %d (%s), threshold: %.0f", r.AirQuality, aqiLabel(r.AirQuality), s.AirQualityThreshold))
	}

	if r.AirTemperature > s.TemperatureHighThreshold {
		add(model.AlertDanger, "High Temperature",
			fmt.Sprintf("Air temperature is %.1f°C, exceeds max threshold %.0f°C", r.AirTemperature, s.TemperatureHighThreshold))
	} else if r.AirTemperature < s.TemperatureLowThreshold {
		add(model.AlertWarning, "Low Temperature",
			fmt.Sprintf("Air temperature is %.1f°C, below min threshold %.0f°C", r.AirTemperature, s.TemperatureLowThreshold))
	}

	if r.AirHumidity > s.HumidityHighThreshold {
		add(model.AlertWarning, "High Humidity",
			fmt.Sprintf("Air humidity is %.0f%%, exceeds max threshold %.0f%%", r.AirHumidity, s.HumidityHighThreshold))
	} else if r.AirHumidity < s.HumidityLowThreshold {
		add(model.AlertWarning, "Low Humidity",
			fmt.Sprintf("Air humidity is %.0f%%, below min threshold %.0f%%", r.AirHumidity, s.HumidityLowThreshold))
	}

	if r.WaterLevel < s.WaterLevelLowThreshold {
		add(model.AlertWarning, "Low Water Level",
			fmt.Sprintf("Water level is %.0f%%, below threshold %.0f%%", r.WaterLevel, s.WaterLevelLowThreshold))
	}

	return fired
}

// Push records a single alert, subject to the title cooldown. Used by the
// coordinator and scheduler for operational notifications.
func (e *Engine) Push(typ model.AlertType, title, message string, now time.Time) (model.Alert, bool) {
	return e.push(typ, title, message, now)
}

func (e *Engine) push(typ model.AlertType, title, message string, now time.Time) (model.Alert, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.tracker.Allow(title, now) {
		log.Printf("[AlertEngine] suppressed %q (cooldown active)", title)
		return model.Alert{}, false
	}

	a := model.Alert{
		ID:        fmt.Sprintf("%s-%d", typ, now.UnixMilli()),
		Type:      typ,
		Title:     title,
		Message:   message,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	e.alerts = append([]model.Alert{a}, e.alerts...)
	if len(e.alerts) > maxAlerts {
		e.alerts = e.alerts[:maxAlerts]
	}
	metrics.AlertsFired.WithLabelValues(string(typ)).Inc()
	log.Printf("[AlertEngine] %s: %s", title, message)
	return a, true
}

func aqiLabel(aqi int) string {
	switch {
	case aqi > 300:
		return "Hazardous"
	case aqi > 200:
		return "Very Unhealthy"
	case aqi > 150:
		return "Unhealthy"
	default:
		return "Unknown"
	}
}

// List returns the alerts, newest first.
func (e *Engine) List() []model.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Alert, len(e.alerts))
	copy(out, e.alerts)
	return out
}

// Dismiss removes the alert with the given id. Unknown ids are a no-op.
func (e *Engine) Dismiss(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, a := range e.alerts {
		if a.ID == id {
			e.alerts = append(e.alerts[:i], e.alerts[i+1:]...)
			return
		}
	}
}

// MarkRead flags the alert with the given id as read.
func (e *Engine) MarkRead(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.alerts {
		if e.alerts[i].ID == id {
			e.alerts[i].Read = true
			return
		}
	}
}

// ClearAll drops every alert. Cooldown state is kept so cleared alerts do not
// immediately refire.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.alerts = nil
}

// UnreadCount reports how many alerts have not been marked read.
func (e *Engine) UnreadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, a := range e.alerts {
		if !a.Read {
			n++
		}
	}
	return n
}
