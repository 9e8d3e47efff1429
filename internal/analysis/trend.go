// Package analysis derives change, trend, and alert statistics from
// normalized reading series
package analysis

import (
	"math"

	"github.com/flusslauf/pegelmonitor/internal/entities"
)

// Evenly sampled river sources publish a reading every 15 minutes.
// Each window maps to an ideal comparison offset in samples and the
// minimum history below which no estimate is attempted.
type windowSpec struct {
	ideal   int
	minimum int
}

var riverWindows = map[entities.TimeRange]windowSpec{
	entities.Range1Hour:   {ideal: 4, minimum: 2},
	entities.Range2Hours:  {ideal: 8, minimum: 4},
	entities.Range6Hours:  {ideal: 24, minimum: 12},
	entities.Range12Hours: {ideal: 48, minimum: 24},
	entities.Range24Hours: {ideal: 96, minimum: 48},
	entities.Range48Hours: {ideal: 192, minimum: 96},
	entities.Range1Week:   {ideal: 672, minimum: 192},
}

// Daily sampled lake sources: window expressed in days.
var lakeWindows = map[entities.TimeRange]int{
	entities.Range1Week:   7,
	entities.Range1Month:  30,
	entities.Range3Months: 90,
	entities.Range6Months: 180,
}

// Per-kind magnitude thresholds: small / medium / large.
var changeThresholds = map[entities.ReadingKind][3]float64{
	entities.KindFlow:        {0.1, 0.5, 1.0},
	entities.KindLevel:       {5, 20, 50},
	entities.KindTemperature: {0.5, 2, 5},
}

// Change computes the change between the newest value and a comparison
// point roughly the requested window back, for an evenly sampled
// series (newest first). When the history is shorter than the ideal
// span but above the window's minimum, the raw change is linearly
// extrapolated to the full window. Below the minimum the result
// carries a nil change.
func Change(kind entities.ReadingKind, values []float64, window entities.TimeRange) entities.ChangeStats {
	stats := entities.ChangeStats{Status: entities.ChangeStable, Range: window}

	spec, ok := riverWindows[window]
	if !ok || len(values) < 2 || len(values) < spec.minimum {
		return stats
	}

	idx := spec.ideal
	if idx > len(values)-1 {
		idx = len(values) - 1
	}
	change := values[0] - values[idx]
	if idx < spec.ideal {
		change *= float64(spec.ideal) / float64(idx)
	}

	stats.AbsoluteChange = &change
	stats.Status = ClassifyChange(change, kind)
	return stats
}

// LakeChange is the daily-sampled variant. The comparison index is the
// window in days, clamped to the available history; no extrapolation
// is applied since daily data already spans close to the window when
// present at all.
func LakeChange(values []float64, window entities.TimeRange) entities.ChangeStats {
	stats := entities.ChangeStats{Status: entities.ChangeStable, Range: window}

	days, ok := lakeWindows[window]
	if !ok || len(values) < 2 {
		return stats
	}

	idx := days
	if idx > len(values)-1 {
		idx = len(values) - 1
	}
	change := values[0] - values[idx]

	stats.AbsoluteChange = &change
	stats.Status = ClassifyChange(change, entities.KindTemperature)
	return stats
}

// ClassifyChange buckets a change magnitude using the thresholds of the
// reading kind. Equality with the upper medium boundary promotes to
// large.
func ClassifyChange(change float64, kind entities.ReadingKind) entities.ChangeStatus {
	t, ok := changeThresholds[kind]
	if !ok {
		return entities.ChangeStable
	}
	m := math.Abs(change)

	var severity int
	switch {
	case m < t[0]:
		return entities.ChangeStable
	case m < t[1]:
		severity = 1
	case m < t[2]:
		severity = 2
	default:
		severity = 3
	}
	return directed(severity, change < 0)
}

// ClassifyPercentChange buckets a day-over-day percentage change.
// 15% and up is large, 5% medium, 1% small.
func ClassifyPercentChange(percent float64) entities.ChangeStatus {
	m := math.Abs(percent)

	var severity int
	switch {
	case m < 1:
		return entities.ChangeStable
	case m < 5:
		severity = 1
	case m < 15:
		severity = 2
	default:
		severity = 3
	}
	return directed(severity, percent < 0)
}

// DailyChange derives the day-over-day change record from the current
// reading and the closest point from ~24h prior
func DailyChange(current, dayAgo float64) entities.DailyChange {
	abs := current - dayAgo
	percent := 0.0
	if dayAgo != 0 {
		percent = abs / dayAgo * 100
	}
	return entities.DailyChange{
		Absolute: abs,
		Percent:  percent,
		Status:   ClassifyPercentChange(percent),
	}
}

func directed(severity int, decrease bool) entities.ChangeStatus {
	if decrease {
		switch severity {
		case 1:
			return entities.ChangeSmallDecrease
		case 2:
			return entities.ChangeMediumDecrease
		default:
			return entities.ChangeLargeDecrease
		}
	}
	switch severity {
	case 1:
		return entities.ChangeSmallIncrease
	case 2:
		return entities.ChangeMediumIncrease
	default:
		return entities.ChangeLargeIncrease
	}
}
