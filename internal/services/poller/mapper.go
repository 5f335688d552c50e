package poller

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/climaneer/climaneer/internal/model"
)

// The remote store is written by firmware in snake_case and by older app
// builds in camelCase, so every numeric field is read through an alias list.
// Both mappers are pure: absent input yields ok=false, anything else yields a
// fully populated record with missing fields defaulted to zero.

// MapSensors normalizes the raw sensors object into a SensorReading.
func MapSensors(raw map[string]any, now time.Time) (model.SensorReading, bool) {
	if raw == nil {
		return model.SensorReading{}, false
	}

	r := model.SensorReading{
		ID:               pickString(raw, "firebase-sensor", "id"),
		Timestamp:        pickString(raw, now.UTC().Format(time.RFC3339), "timestamp"),
		SoilMoisture:     pickNumber(raw, "soil_moisture", "soilMoisture"),
		AirHumidity:      pickNumber(raw, "air_humidity", "airHumidity"),
		WaterLevel:       pickNumber(raw, "water_level", "waterLevel"),
		PH:               pickNumber(raw, "ph", "pH"),
		AirTemperature:   pickNumber(raw, "air_temp", "airTemperature"),
		WaterTemperature: pickNumber(raw, "water_temp", "waterTemperature"),
		AirQuality:       int(math.Round(pickNumber(raw, "air_quality", "airQuality"))),
		FlowRate:         pickNumber(raw, "flow", "flowRate"),
		Battery:          pickNumber(raw, "battery"),
	}
	return r, true
}

// MapControls normalizes the raw controls object into a SystemStatus. The
// pump is running only for true, "on" or 1; every other value means stopped.
// No input ever maps to the error state.
func MapControls(raw map[string]any) (model.SystemStatus, bool) {
	if raw == nil {
		return model.SystemStatus{}, false
	}

	pump := model.PumpStopped
	if pumpOn(raw["pump"]) {
		pump = model.PumpRunning
	}

	mode := model.ModeAutomatic
	if s, ok := raw["mode"].(string); ok && strings.EqualFold(strings.TrimSpace(s), "manual") {
		mode = model.ModeManual
	} else if truthy(raw["manual_override"]) {
		mode = model.ModeManual
	}

	signal := model.SignalWeak
	if truthy(raw["firebase_online"]) {
		signal = model.SignalStrong
	}

	return model.SystemStatus{
		Uptime:        pickNumber(raw, "uptime"),
		PumpStatus:    pump,
		PumpRuntime:   pickNumber(raw, "pump_runtime", "pumpRuntime"),
		ControlMode:   mode,
		NetworkSignal: signal,
		DataUsage:     pickNumber(raw, "dataUsage", "data_usage"),
	}, true
}

func pumpOn(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x == "on"
	case float64:
		return x == 1
	case int:
		return x == 1
	}
	return false
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != "" && x != "0" && !strings.EqualFold(x, "false")
	case float64:
		return x != 0
	case int:
		return x != 0
	case nil:
		return false
	}
	return true
}

func pickString(raw map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok && s != "" {
			return s
		}
	}
	return def
}

func pickNumber(raw map[string]any, keys ...string) float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if f := toF64(v); !math.IsNaN(f) {
			return f
		}
	}
	return 0
}

// toF64 coerces the JSON-ish value types the store has been seen to hold.
// Unconvertible values come back NaN so pickNumber can fall through to the
// next alias.
func toF64(v any) float64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) {
			return math.NaN()
		}
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", "."), 64); err == nil {
			return f
		}
	}
	return math.NaN()
}
