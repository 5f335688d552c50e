package trends

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/climaneer/climaneer/internal/model"
)

const defaultRetention = 24 * time.Hour

// Sink receives every appended reading for downstream persistence.
type Sink interface {
	Write(r model.SensorReading)
}

// Store is the append-only, time-windowed buffer of mapped readings used for
// charting and statistics. Capacity is bounded by the retention window, not a
// count. Every mutation is persisted to a local JSON file; persistence is
// best-effort and failures never interrupt the poll path.
type Store struct {
	mu        sync.Mutex
	path      string
	retention time.Duration
	entries   []model.SensorReading
	sink      Sink
}

func NewStore(path string, retention time.Duration) *Store {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Store{path: path, retention: retention}
}

// SetSink attaches an optional downstream sink (e.g. Influx). Must be called
// before the poll loop starts.
func (s *Store) SetSink(sink Sink) {
	s.sink = sink
}

// Load restores a previously persisted buffer. A missing or corrupt file
// starts the store empty.
func (s *Store) Load() {
	if s.path == "" {
		return
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("trends: read %s: %v", s.path, err)
		}
		return
	}
	var entries []model.SensorReading
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Printf("trends: corrupt trend file %s, starting empty: %v", s.path, err)
		return
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

// Append adds a reading, prunes everything older than the retention window
// relative to now, and persists the result.
func (s *Store) Append(r model.SensorReading, now time.Time) {
	s.mu.Lock()
	s.entries = append(s.entries, r)
	s.pruneLocked(now)
	s.saveLocked()
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Write(r)
	}
}

// Prune drops aged-out entries without appending.
func (s *Store) Prune(now time.Time) {
	s.mu.Lock()
	s.pruneLocked(now)
	s.saveLocked()
	s.mu.Unlock()
}

// Snapshot returns a copy of the retained readings, oldest first.
func (s *Store) Snapshot() []model.SensorReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.SensorReading, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports the number of retained readings.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// TrendData projects the readings of the last hours into per-channel series
// for the charts.
func (s *Store) TrendData(hours int, now time.Time) model.TrendData {
	if hours <= 0 {
		hours = 24
	}
	cutoff := now.Add(-time.Duration(hours) * time.Hour)

	s.mu.Lock()
	defer s.mu.Unlock()

	td := model.TrendData{
		Timestamps:  []string{},
		Moisture:    []float64{},
		Humidity:    []float64{},
		Temperature: []float64{},
		PH:          []float64{},
		WaterLevel:  []float64{},
		Flow:        []float64{},
	}
	for _, r := range s.entries {
		if !r.Time().After(cutoff) {
			continue
		}
		td.Timestamps = append(td.Timestamps, r.Timestamp)
		td.Moisture = append(td.Moisture, r.SoilMoisture)
		td.Humidity = append(td.Humidity, r.AirHumidity)
		td.Temperature = append(td.Temperature, r.AirTemperature)
		td.PH = append(td.PH, r.PH)
		td.WaterLevel = append(td.WaterLevel, r.WaterLevel)
		td.Flow = append(td.Flow, r.FlowRate)
	}
	return td
}

// pruneLocked keeps entries whose timestamp is newer than the cutoff.
// Unparseable timestamps report the zero time and therefore age out.
func (s *Store) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.retention)
	kept := s.entries[:0]
	for _, r := range s.entries {
		if r.Time().After(cutoff) {
			kept = append(kept, r)
		}
	}
	s.entries = kept
}

func (s *Store) saveLocked() {
	if s.path == "" {
		return
	}
	raw, err := json.Marshal(s.entries)
	if err != nil {
		log.Printf("trends: marshal: %v", err)
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		// Trend data is best-effort: the in-memory buffer stays authoritative.
		log.Printf("trends: write %s: %v", s.path, err)
	}
}
