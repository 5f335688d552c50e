package trends

import (
	"fmt"
	"log"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/climaneer/climaneer/internal/model"
)

// InfluxConfig selects the bucket readings are mirrored into.
type InfluxConfig struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// InfluxSink mirrors every appended reading into InfluxDB through the async
// write API. Write errors are observed on a listener goroutine and tracked so
// readiness checks can report on sink health.
type InfluxSink struct {
	client   influxdb2.Client
	api      api.WriteAPI
	measName string

	mu      sync.RWMutex
	lastErr time.Time
}

func NewInfluxSink(cfg InfluxConfig) (*InfluxSink, error) {
	if cfg.URL == "" || cfg.Token == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("influx config incomplete")
	}
	meas := cfg.Measurement
	if meas == "" {
		meas = "sensor_reading"
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)

	s := &InfluxSink{
		client:   client,
		api:      writeAPI,
		measName: meas,
		lastErr:  time.Now().Add(-24 * time.Hour),
	}
	go func() {
		for err := range writeAPI.Errors() {
			if err != nil {
				s.mu.Lock()
				s.lastErr = time.Now()
				s.mu.Unlock()
				log.Printf("trends: influx write error: %v", err)
			}
		}
	}()
	return s, nil
}

// Write queues one reading. The async API batches and retries internally.
func (s *InfluxSink) Write(r model.SensorReading) {
	t := r.Time()
	if t.IsZero() {
		t = time.Now()
	}
	tags := map[string]string{"sensor_id": r.ID}
	fields := map[string]interface{}{
		"soil_moisture": r.SoilMoisture,
		"air_humidity":  r.AirHumidity,
		"water_level":   r.WaterLevel,
		"ph":            r.PH,
		"air_temp":      r.AirTemperature,
		"water_temp":    r.WaterTemperature,
		"air_quality":   int64(r.AirQuality),
		"flow":          r.FlowRate,
		"battery":       r.Battery,
	}
	s.api.WritePoint(influxdb2.NewPoint(s.measName, tags, fields, t))
}

// LastErrorAge reports how long the sink has been writing cleanly.
func (s *InfluxSink) LastErrorAge() time.Duration {
	if s == nil {
		return 99999 * time.Hour
	}
	s.mu.RLock()
	t := s.lastErr
	s.mu.RUnlock()
	return time.Since(t)
}

// Close flushes pending points and shuts the client down.
func (s *InfluxSink) Close() {
	s.api.Flush()
	s.client.Close()
}
