package alerts

import (
	"fmt"
	"testing"
	"time"

	"github.com/climaneer/climaneer/internal/model"
)

func healthyReading() model.SensorReading {
	return model.SensorReading{
		SoilMoisture:   50,
		AirHumidity:    50,
		WaterLevel:     60,
		PH:             7.0,
		AirTemperature: 22,
		AirQuality:     40,
		Battery:        80,
	}
}

func TestEvaluateHealthyReadingFiresNothing(t *testing.T) {
	e := NewEngine(time.Hour)
	fired := e.Evaluate(healthyReading(), model.DefaultSettings(), time.Now())
	if len(fired) != 0 {
		t.Fatalf("fired %d alerts for a healthy reading: %+v", len(fired), fired)
	}
}

func TestEvaluateFiresEveryCheck(t *testing.T) {
	e := NewEngine(time.Hour)
	r := model.SensorReading{
		SoilMoisture:   5,
		AirHumidity:    95,
		WaterLevel:     10,
		PH:             9.2,
		AirTemperature: 40,
		AirQuality:     320,
		Battery:        10,
	}
	fired := e.Evaluate(r, model.DefaultSettings(), time.Now())

	want := map[string]model.AlertType{
		"Low Soil Moisture": model.AlertWarning,
		"Low Battery":       model.AlertWarning,
		"pH Out of Range":   model.AlertWarning,
		"Poor Air Quality":  model.AlertDanger,
		"High Temperature":  model.AlertDanger,
		"High Humidity":     model.AlertWarning,
		"Low Water Level":   model.AlertWarning,
	}
	if len(fired) != len(want) {
		t.Fatalf("fired %d alerts, want %d: %+v", len(fired), len(want), fired)
	}
	for _, a := range fired {
		typ, ok := want[a.Title]
		if !ok {
			t.Errorf("unexpected alert %q", a.Title)
			continue
		}
		if a.Type != typ {
			t.Errorf("%q has type %s, want %s", a.Title, a.Type, typ)
		}
	}
}

func TestTemperatureAndHumidityAreMutuallyExclusive(t *testing.T) {
	e := NewEngine(time.Hour)
	r := healthyReading()
	r.AirTemperature = 2
	r.AirHumidity = 10
	fired := e.Evaluate(r, model.DefaultSettings(), time.Now())
	titles := map[string]bool{}
	for _, a := range fired {
		titles[a.Title] = true
	}
	if !titles["Low Temperature"] || titles["High Temperature"] {
		t.Errorf("want low-temperature alert only, got %v", titles)
	}
	if !titles["Low Humidity"] || titles["High Humidity"] {
		t.Errorf("want low-humidity alert only, got %v", titles)
	}
}

func TestAirQualityQualifier(t *testing.T) {
	cases := []struct {
		aqi  int
		want string
	}{
		{160, "Unhealthy"},
		{250, "Very Unhealthy"},
		{350, "Hazardous"},
	}
	for _, tc := range cases {
		e := NewEngine(time.Hour)
		r := healthyReading()
		r.AirQuality = tc.aqi
		fired := e.Evaluate(r, model.DefaultSettings(), time.Now())
		if len(fired) != 1 {
			t.Fatalf("aqi %d: fired %d alerts", tc.aqi, len(fired))
		}
		wantMsg := fmt.Sprintf("Air quality index is %d (%s), threshold: 150", tc.aqi, tc.want)
		if fired[0].Message != wantMsg {
			t.Errorf("aqi %d: message %q, want %q", tc.aqi, fired[0].Message, wantMsg)
		}
	}
}

func TestCooldownSuppressesRepeats(t *testing.T) {
	e := NewEngine(time.Hour)
	r := healthyReading()
	r.SoilMoisture = 5
	s := model.DefaultSettings()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if fired := e.Evaluate(r, s, base); len(fired) != 1 {
		t.Fatalf("first evaluation fired %d alerts", len(fired))
	}
	if fired := e.Evaluate(r, s, base.Add(30*time.Minute)); len(fired) != 0 {
		t.Fatalf("evaluation inside cooldown fired %d alerts", len(fired))
	}
	if fired := e.Evaluate(r, s, base.Add(61*time.Minute)); len(fired) != 1 {
		t.Fatalf("evaluation after cooldown fired %d alerts", len(fired))
	}
}

func TestListCappedAtNewest200(t *testing.T) {
	e := NewEngine(time.Hour)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 250; i++ {
		e.Push(model.AlertInfo, fmt.Sprintf("event-%d", i), "x", now.Add(time.Duration(i)*time.Second))
	}
	list := e.List()
	if len(list) != 200 {
		t.Fatalf("list holds %d alerts, want 200", len(list))
	}
	if list[0].Title != "event-249" {
		t.Errorf("newest alert is %q, want event-249", list[0].Title)
	}
	if list[len(list)-1].Title != "event-50" {
		t.Errorf("oldest retained alert is %q, want event-50", list[len(list)-1].Title)
	}
}

func TestListOps(t *testing.T) {
	e := NewEngine(time.Hour)
	now := time.Now()
	a, _ := e.Push(model.AlertWarning, "one", "m", now)
	b, _ := e.Push(model.AlertDanger, "two", "m", now.Add(time.Second))

	// Seed alert plus the two above.
	if got := e.UnreadCount(); got != 3 {
		t.Fatalf("unread = %d, want 3", got)
	}

	e.MarkRead(a.ID)
	if got := e.UnreadCount(); got != 2 {
		t.Errorf("unread after MarkRead = %d, want 2", got)
	}

	e.Dismiss(b.ID)
	for _, al := range e.List() {
		if al.ID == b.ID {
			t.Error("dismissed alert still listed")
		}
	}

	e.ClearAll()
	if got := len(e.List()); got != 0 {
		t.Errorf("list holds %d alerts after ClearAll", got)
	}
	if _, ok := e.Push(model.AlertWarning, "one", "m", now.Add(time.Minute)); ok {
		t.Error("cooldown should survive ClearAll")
	}
}
