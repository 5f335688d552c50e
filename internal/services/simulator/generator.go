// Package simulator produces realistic random readings for development and
// demo setups where no hardware is publishing to the remote store.
package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/climaneer/climaneer/internal/model"
)

// Generator emits readings inside plausible healthy ranges so a simulated
// deployment looks alive without tripping the alert thresholds.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Reading produces one random reading stamped at now.
func (g *Generator) Reading(now time.Time) model.SensorReading {
	g.mu.Lock()
	defer g.mu.Unlock()
	return model.SensorReading{
		ID:               "simulated-sensor",
		Timestamp:        now.UTC().Format(time.RFC3339),
		SoilMoisture:     math.Round(55 + g.rnd.Float64()*20),  // 55-75%
		AirHumidity:      math.Round(45 + g.rnd.Float64()*20),  // 45-65%
		WaterLevel:       math.Round(70 + g.rnd.Float64()*15),  // 70-85%
		PH:               round1(6.5 + g.rnd.Float64()*0.6),    // 6.5-7.1
		AirTemperature:   round1(22 + g.rnd.Float64()*4),       // 22-26°C
		WaterTemperature: round1(18 + g.rnd.Float64()*4),       // 18-22°C
		AirQuality:       int(math.Round(30 + g.rnd.Float64()*30)), // 30-60 AQI
		FlowRate:         round1(2 + g.rnd.Float64()),          // 2-3 L/min
		Battery:          math.Round(80 + g.rnd.Float64()*15),  // 80-95%
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
