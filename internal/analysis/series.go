package analysis

import (
	"github.com/flusslauf/pegelmonitor/internal/entities"
)

// RiverChange computes the change statistics for one reading kind of a
// water body over the requested window. Lake temperatures use the
// daily-sampled analysis, everything else the evenly sampled one.
func RiverChange(rd entities.RiverData, kind entities.ReadingKind, window entities.TimeRange) entities.ChangeStats {
	switch kind {
	case entities.KindLevel:
		return Change(kind, levelValues(rd.LevelHistory), window)
	case entities.KindFlow:
		return Change(kind, flowValues(rd.FlowHistory), window)
	case entities.KindTemperature:
		values := temperatureValues(rd.TemperatureHistory)
		if rd.IsLake {
			return LakeChange(values, window)
		}
		return Change(kind, values, window)
	}
	return entities.ChangeStats{Status: entities.ChangeStable, Range: window}
}

func levelValues(history []entities.LevelPoint) []float64 {
	values := make([]float64, len(history))
	for i, p := range history {
		values[i] = p.Level
	}
	return values
}

func flowValues(history []entities.FlowPoint) []float64 {
	values := make([]float64, len(history))
	for i, p := range history {
		values[i] = p.Flow
	}
	return values
}

func temperatureValues(history []entities.TemperaturePoint) []float64 {
	values := make([]float64, len(history))
	for i, p := range history {
		values[i] = p.Temperature
	}
	return values
}
