package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flusslauf/pegelmonitor/internal/entities"
)

// series builds a newest-first value slice that declines linearly from
// head by step per sample.
func series(head float64, step float64, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = head - float64(i)*step
	}
	return values
}

func TestChange(t *testing.T) {
	t.Run("full history, no extrapolation", func(t *testing.T) {
		values := series(100, 0.01, 700)
		stats := Change(entities.KindLevel, values, entities.Range1Week)

		require.NotNil(t, stats.AbsoluteChange)
		// Comparison point sits exactly 672 samples back.
		assert.InDelta(t, values[0]-values[672], *stats.AbsoluteChange, 1e-9)
		assert.Equal(t, entities.Range1Week, stats.Range)
	})

	t.Run("short history above minimum extrapolates", func(t *testing.T) {
		values := series(10, 0.02, 300) // 300 of 672 ideal samples, above the 192 minimum
		stats := Change(entities.KindTemperature, values, entities.Range1Week)

		require.NotNil(t, stats.AbsoluteChange)
		raw := values[0] - values[299]
		assert.InDelta(t, raw*672.0/299.0, *stats.AbsoluteChange, 1e-9)
	})

	t.Run("history below minimum yields nil", func(t *testing.T) {
		values := series(10, 0.02, 50)
		stats := Change(entities.KindLevel, values, entities.Range1Week)

		assert.Nil(t, stats.AbsoluteChange)
		assert.Equal(t, entities.ChangeStable, stats.Status)
	})

	t.Run("single point yields nil", func(t *testing.T) {
		stats := Change(entities.KindFlow, []float64{3.2}, entities.Range1Hour)
		assert.Nil(t, stats.AbsoluteChange)
	})

	t.Run("unknown window yields nil", func(t *testing.T) {
		stats := Change(entities.KindFlow, series(5, 0.1, 100), entities.Range6Months)
		assert.Nil(t, stats.AbsoluteChange)
	})

	t.Run("one hour window", func(t *testing.T) {
		values := series(120, 1, 10)
		stats := Change(entities.KindLevel, values, entities.Range1Hour)

		require.NotNil(t, stats.AbsoluteChange)
		assert.InDelta(t, 4, *stats.AbsoluteChange, 1e-9) // 4 samples back, 1 cm each
		assert.Equal(t, entities.ChangeStable, stats.Status)
	})
}

func TestLakeChange(t *testing.T) {
	t.Run("week window compares seven days back", func(t *testing.T) {
		values := series(20, 0.5, 30)
		stats := LakeChange(values, entities.Range1Week)

		require.NotNil(t, stats.AbsoluteChange)
		assert.InDelta(t, values[0]-values[7], *stats.AbsoluteChange, 1e-9)
	})

	t.Run("clamps to available history without extrapolating", func(t *testing.T) {
		values := series(18, 1, 5)
		stats := LakeChange(values, entities.Range1Month)

		require.NotNil(t, stats.AbsoluteChange)
		assert.InDelta(t, values[0]-values[4], *stats.AbsoluteChange, 1e-9)
	})

	t.Run("below two points yields nil", func(t *testing.T) {
		stats := LakeChange([]float64{17.5}, entities.Range1Week)
		assert.Nil(t, stats.AbsoluteChange)
	})
}

func TestClassifyChange(t *testing.T) {
	cases := []struct {
		kind   entities.ReadingKind
		change float64
		want   entities.ChangeStatus
	}{
		{entities.KindLevel, 0, entities.ChangeStable},
		{entities.KindLevel, 4.9, entities.ChangeStable},
		{entities.KindLevel, 5, entities.ChangeSmallIncrease},
		{entities.KindLevel, 20, entities.ChangeMediumIncrease},
		{entities.KindLevel, 50, entities.ChangeLargeIncrease}, // boundary promotes to large
		{entities.KindLevel, -60, entities.ChangeLargeDecrease},
		{entities.KindFlow, 0.05, entities.ChangeStable},
		{entities.KindFlow, 0.3, entities.ChangeSmallIncrease},
		{entities.KindFlow, -0.7, entities.ChangeMediumDecrease},
		{entities.KindFlow, 1.5, entities.ChangeLargeIncrease},
		{entities.KindTemperature, 0.4, entities.ChangeStable},
		{entities.KindTemperature, -1.2, entities.ChangeSmallDecrease},
		{entities.KindTemperature, 3, entities.ChangeMediumIncrease},
		{entities.KindTemperature, -5, entities.ChangeLargeDecrease},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%s %+.2f", c.kind, c.change), func(t *testing.T) {
			assert.Equal(t, c.want, ClassifyChange(c.change, c.kind))
		})
	}
}

// Increasing the magnitude of a change must never decrease its severity.
func TestClassifySeverityMonotonic(t *testing.T) {
	for _, kind := range []entities.ReadingKind{entities.KindLevel, entities.KindFlow, entities.KindTemperature} {
		prev := 0
		for m := 0.0; m <= 100; m += 0.25 {
			s := ClassifyChange(m, kind).Severity()
			require.GreaterOrEqual(t, s, prev, "kind %s magnitude %.2f", kind, m)
			prev = s
		}
	}
}

func TestClassifyPercentChange(t *testing.T) {
	assert.Equal(t, entities.ChangeStable, ClassifyPercentChange(0.5))
	assert.Equal(t, entities.ChangeSmallIncrease, ClassifyPercentChange(1))
	assert.Equal(t, entities.ChangeMediumIncrease, ClassifyPercentChange(7))
	assert.Equal(t, entities.ChangeLargeIncrease, ClassifyPercentChange(15)) // 15% is already large
	assert.Equal(t, entities.ChangeLargeIncrease, ClassifyPercentChange(50))
	assert.Equal(t, entities.ChangeLargeDecrease, ClassifyPercentChange(-20))
	assert.Equal(t, entities.ChangeSmallDecrease, ClassifyPercentChange(-2))
}

func TestDailyChange(t *testing.T) {
	t.Run("level rise from 100 to 150 cm", func(t *testing.T) {
		dc := DailyChange(150, 100)
		assert.InDelta(t, 50, dc.Absolute, 1e-9)
		assert.InDelta(t, 50, dc.Percent, 1e-9)
		assert.Equal(t, entities.ChangeLargeIncrease, dc.Status)
	})

	t.Run("zero baseline avoids division", func(t *testing.T) {
		dc := DailyChange(3, 0)
		assert.InDelta(t, 3, dc.Absolute, 1e-9)
		assert.InDelta(t, 0, dc.Percent, 1e-9)
		assert.Equal(t, entities.ChangeStable, dc.Status)
	})
}
