package model

// Statistics summarizes recent readings for the dashboard statistics cards.
type Statistics struct {
	WaterUsed          float64 `json:"waterUsed"`   // liters
	PumpRuntime        float64 `json:"pumpRuntime"` // minutes
	Efficiency         float64 `json:"efficiency"`  // %
	AverageMoisture    float64 `json:"averageMoisture"`
	AverageTemperature float64 `json:"averageTemperature"`
}

// TrendData is the per-channel series consumed by the charts.
type TrendData struct {
	Timestamps  []string  `json:"timestamps"`
	Moisture    []float64 `json:"moisture"`
	Humidity    []float64 `json:"humidity"`
	Temperature []float64 `json:"temperature"`
	PH          []float64 `json:"ph"`
	WaterLevel  []float64 `json:"waterLevel"`
	Flow        []float64 `json:"flow"`
}
