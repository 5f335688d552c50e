package poller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/climaneer/climaneer/internal/metrics"
	"github.com/climaneer/climaneer/internal/model"
	"github.com/climaneer/climaneer/internal/services/alerts"
	"github.com/climaneer/climaneer/internal/services/control"
	"github.com/climaneer/climaneer/internal/services/gateway"
	"github.com/climaneer/climaneer/internal/services/history"
	"github.com/climaneer/climaneer/internal/services/trends"
)

// Fetcher is the slice of the gateway the poller reads through.
type Fetcher interface {
	Fetch(ctx context.Context) (gateway.Snapshot, error)
}

type breakerStater interface {
	BreakerState() gobreaker.State
}

// Poller drives the fetch-map-dispatch cycle: it pulls the remote snapshot,
// maps it, and fans the mapped reading out to the trend store, the history
// log, the alert engine, and the coordinator. A failed cycle keeps the last
// known good state and flips the online flag off until the next success.
type Poller struct {
	fetcher Fetcher
	trends  *trends.Store
	history *history.Log
	alerts  *alerts.Engine
	coord   *control.Coordinator

	busy atomic.Bool

	mu             sync.RWMutex
	reading        model.SensorReading
	hasReading     bool
	recommendation string
	online         bool
	lastMapped     time.Time
}

func New(fetcher Fetcher, tr *trends.Store, hist *history.Log, al *alerts.Engine, coord *control.Coordinator) *Poller {
	return &Poller{fetcher: fetcher, trends: tr, history: hist, alerts: al, coord: coord}
}

// Run polls immediately and then at the coordinator's configured interval
// until ctx is cancelled. The interval is re-read every cycle so a settings
// save takes effect without a restart.
func (p *Poller) Run(ctx context.Context) {
	if err := p.PollOnce(ctx, time.Now()); err != nil {
		log.Printf("[Poller] initial fetch failed: %v", err)
	}
	for {
		interval := p.coord.Settings().PollInterval
		if interval <= 0 {
			interval = 5 * time.Second
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			if err := p.PollOnce(ctx, time.Now()); err != nil {
				log.Printf("[Poller] fetch failed: %v", err)
			}
		}
	}
}

// PollOnce performs a single cycle. Overlapping calls are rejected so a slow
// fetch never stacks up behind the ticker.
func (p *Poller) PollOnce(ctx context.Context, now time.Time) error {
	if !p.busy.CompareAndSwap(false, true) {
		return nil
	}
	defer p.busy.Store(false)
	defer p.publishBreakerState()

	snap, err := p.fetcher.Fetch(ctx)
	metrics.PollsTotal.Inc()
	if err != nil {
		metrics.PollsFailed.Inc()
		p.setOnline(false)
		return fmt.Errorf("poll cycle: %w", err)
	}
	p.setOnline(true)

	if r, ok := MapSensors(snap.Sensors, now); ok {
		p.Ingest(r, now)
	}

	if st, ok := MapControls(snap.Controls); ok {
		p.coord.ApplyRemoteStatus(st, now)
	}

	if snap.AI.Recommendation != "" {
		p.mu.Lock()
		p.recommendation = snap.AI.Recommendation
		p.mu.Unlock()
	}
	return nil
}

// Ingest feeds one reading through the regular dispatch path: last-reading
// state, trend store, history log, alert evaluation, and flow accounting.
// Simulated readings enter here as well.
func (p *Poller) Ingest(r model.SensorReading, now time.Time) {
	p.mu.Lock()
	elapsed := time.Duration(0)
	if !p.lastMapped.IsZero() {
		elapsed = now.Sub(p.lastMapped)
	}
	p.lastMapped = now
	p.reading = r
	p.hasReading = true
	p.mu.Unlock()

	p.trends.Append(r, now)
	p.history.Add(r, now)
	p.alerts.Evaluate(r, p.coord.Settings(), now)
	p.coord.RecordFlow(r.FlowRate, elapsed)
}

func (p *Poller) setOnline(online bool) {
	p.mu.Lock()
	changed := p.online != online
	p.online = online
	p.mu.Unlock()
	if changed {
		if online {
			metrics.Online.Set(1)
			log.Print("[Poller] remote store reachable")
		} else {
			metrics.Online.Set(0)
			log.Print("[Poller] remote store unreachable, keeping last known state")
		}
	}
}

func (p *Poller) publishBreakerState() {
	bs, ok := p.fetcher.(breakerStater)
	if !ok {
		return
	}
	if bs.BreakerState() == gobreaker.StateOpen {
		metrics.BreakerOpen.Set(1)
	} else {
		metrics.BreakerOpen.Set(0)
	}
}

// Reading returns the last mapped reading, if any cycle has produced one.
func (p *Poller) Reading() (model.SensorReading, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reading, p.hasReading
}

// Recommendation returns the last AI recommendation seen in a snapshot.
func (p *Poller) Recommendation() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.recommendation
}

// Online reports whether the last cycle reached the remote store.
func (p *Poller) Online() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.online
}

// SensorValue renders one channel of the last reading for voice readback.
// Unknown keys and a missing reading both come back as "not available".
func (p *Poller) SensorValue(key string) string {
	p.mu.RLock()
	r, ok := p.reading, p.hasReading
	p.mu.RUnlock()
	if !ok {
		return "not available"
	}
	switch key {
	case "soilMoisture":
		return fmt.Sprintf("%.0f%%", r.SoilMoisture)
	case "airHumidity":
		return fmt.Sprintf("%.0f%%", r.AirHumidity)
	case "airTemperature":
		return fmt.Sprintf("%.1f°C", r.AirTemperature)
	case "phValue":
		return fmt.Sprintf("%.1f", r.PH)
	case "waterLevel":
		return fmt.Sprintf("%.0f%%", r.WaterLevel)
	case "airQuality":
		return fmt.Sprintf("%d AQI", r.AirQuality)
	case "batteryLevel":
		return fmt.Sprintf("%.0f%%", r.Battery)
	case "flowRate":
		return fmt.Sprintf("%.1f L/min", r.FlowRate)
	default:
		return "not available"
	}
}
