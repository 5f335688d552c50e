package history

import (
	"math"

	"github.com/climaneer/climaneer/internal/model"
)

// statsWindow bounds the averages to the most recent entries.
const statsWindow = 100

// Statistics aggregates the most recent entries. pumpRuntimeMinutes comes from
// the coordinator's pump accounting rather than from the readings themselves.
func (l *Log) Statistics(pumpRuntimeMinutes float64) model.Statistics {
	recent := l.Recent(statsWindow)
	if len(recent) == 0 {
		return model.Statistics{}
	}

	var moisture, temp, flow float64
	for _, e := range recent {
		moisture += e.Sensors.SoilMoisture
		temp += e.Sensors.AirTemperature
		flow += e.Sensors.FlowRate
	}
	n := float64(len(recent))
	avgMoisture := moisture / n

	return model.Statistics{
		WaterUsed:          flow,
		PumpRuntime:        pumpRuntimeMinutes,
		Efficiency:         math.Min(95, math.Round(avgMoisture*1.2)),
		AverageMoisture:    math.Round(avgMoisture*10) / 10,
		AverageTemperature: math.Round(temp/n*10) / 10,
	}
}
