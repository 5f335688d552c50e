package history

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/climaneer/climaneer/internal/model"
)

var csvHeader = []string{
	"Timestamp", "Soil Moisture", "Air Humidity", "Temperature", "pH",
	"Water Level", "Air Quality", "Water Temperature", "Flow Rate", "Battery",
}

// WriteCSV streams the retained entries as RFC4180 CSV, newest first.
func (l *Log) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range l.Recent(0) {
		s := e.Sensors
		row := []string{
			e.Timestamp,
			formatF(s.SoilMoisture),
			formatF(s.AirHumidity),
			formatF(s.AirTemperature),
			formatF(s.PH),
			formatF(s.WaterLevel),
			fmt.Sprintf("%d", s.AirQuality),
			formatF(s.WaterTemperature),
			formatF(s.FlowRate),
			formatF(s.Battery),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonExport struct {
	ExportedAt   string               `json:"exportedAt"`
	TotalEntries int                  `json:"totalEntries"`
	History      []model.HistoryEntry `json:"history"`
}

// WriteJSON streams the retained entries as a JSON export document.
func (l *Log) WriteJSON(w io.Writer, now time.Time) error {
	entries := l.Recent(0)
	doc := jsonExport{
		ExportedAt:   now.UTC().Format(time.RFC3339),
		TotalEntries: len(entries),
		History:      entries,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func formatF(v float64) string {
	return fmt.Sprintf("%g", v)
}
