package feasibility

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNPV(t *testing.T) {
	tests := []struct {
		name     string
		amounts  []float64
		rate     float64
		expected float64
	}{
		{"flat annuity at 8%", []float64{-100000, 30000, 30000, 30000, 30000, 30000}, 0.08, 19781.30},
		{"zero rate sums flows", []float64{-100, 40, 40, 40}, 0, 20},
		{"single outlay", []float64{-500}, 0.1, -500},
		{"empty series", nil, 0.1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NPV(tt.amounts, tt.rate), 0.01)
		})
	}
}

func TestNPVDecreasesWithRate(t *testing.T) {
	amounts := []float64{-1000, 100, 200, 300, 400, 500}
	prev := math.Inf(1)
	for pct := 0; pct <= 40; pct++ {
		v := NPV(amounts, float64(pct)/100)
		assert.Less(t, v, prev, "npv must fall as the rate rises (rate %d%%)", pct)
		prev = v
	}
}

func TestIRR(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("one period", func(t *testing.T) {
		irr, warn := IRR([]float64{-100, 110}, cfg.IRRLowerBound, cfg.IRRUpperBound, cfg.IRRTolerance, cfg.IRRMaxIterations)
		require.Nil(t, warn)
		assert.InDelta(t, 0.10, irr, 1e-6)
	})

	t.Run("flat annuity", func(t *testing.T) {
		amounts := []float64{-100000, 30000, 30000, 30000, 30000, 30000}
		irr, warn := IRR(amounts, cfg.IRRLowerBound, cfg.IRRUpperBound, cfg.IRRTolerance, cfg.IRRMaxIterations)
		require.Nil(t, warn)
		assert.InDelta(t, 0.152382, irr, 1e-5)
		assert.InDelta(t, 0, NPV(amounts, irr), 0.01)
	})

	t.Run("negative rate", func(t *testing.T) {
		amounts := []float64{-500000, 180000, 160000, 140000}
		irr, warn := IRR(amounts, cfg.IRRLowerBound, cfg.IRRUpperBound, cfg.IRRTolerance, cfg.IRRMaxIterations)
		require.Nil(t, warn)
		assert.InDelta(t, -0.020997, irr, 1e-5)
	})

	t.Run("no sign change", func(t *testing.T) {
		_, warn := IRR([]float64{-100, -10, -10}, cfg.IRRLowerBound, cfg.IRRUpperBound, cfg.IRRTolerance, cfg.IRRMaxIterations)
		require.NotNil(t, warn)
		assert.Equal(t, WarningNoBreakevenRate, warn.Code)
		assert.Equal(t, "irrApprox", warn.Metric)
	})

	t.Run("iteration budget exhausted", func(t *testing.T) {
		_, warn := IRR([]float64{-100, 110}, cfg.IRRLowerBound, cfg.IRRUpperBound, 1e-15, 3)
		require.NotNil(t, warn)
		assert.Equal(t, WarningIRRNotConverged, warn.Code)
		assert.Equal(t, 3, warn.Iterations)
	})
}

func TestPaybackPeriod(t *testing.T) {
	tests := []struct {
		name     string
		amounts  []float64
		expected float64
		ok       bool
	}{
		{"interpolated inside period four", []float64{-100000, 30000, 30000, 30000, 30000, 30000}, 3.3333, true},
		{"exact at period end", []float64{-100, 50, 50}, 2, true},
		{"never recovered", []float64{-500000, 180000, 160000, 140000}, 0, false},
		{"no outlay", []float64{0, 10}, 0, true},
		{"empty", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb, ok := PaybackPeriod(tt.amounts)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, pb, 1e-4)
			}
		})
	}
}

func TestPaybackFallsInsideRecoveryPeriod(t *testing.T) {
	amounts := []float64{-1000, 150, 250, 300, 350, 400}
	pb, ok := PaybackPeriod(amounts)
	require.True(t, ok)

	cumulative := amounts[0]
	recovery := 0
	for i := 1; i < len(amounts); i++ {
		cumulative += amounts[i]
		if cumulative >= 0 {
			recovery = i
			break
		}
	}
	assert.Equal(t, float64(recovery), math.Ceil(pb))
	assert.Equal(t, float64(recovery-1), math.Floor(pb))
}

func TestAnnualizedROI(t *testing.T) {
	tests := []struct {
		name      string
		simpleROI float64
		years     int
		expected  float64
		ok        bool
	}{
		{"fifty percent over two years", 50, 2, 22.4745, true},
		{"total loss", -100, 3, -100, true},
		{"negative base is undefined", -120, 2, 0, false},
		{"no years", 10, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AnnualizedROI(tt.simpleROI, tt.years)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, got, 1e-3)
				assert.False(t, math.IsNaN(got))
			}
		})
	}
}

func TestBreakevenMonth(t *testing.T) {
	month, ok := BreakevenMonth(seriesOf(-100000, 30000, 30000, 30000, 30000, 30000).Monthly())
	require.True(t, ok)
	assert.Equal(t, 40, month)

	_, ok = BreakevenMonth(seriesOf(-500000, 180000, 160000, 140000).Monthly())
	assert.False(t, ok)
}

func TestTimeValueCalculator(t *testing.T) {
	calc := NewTimeValueCalculator(DefaultConfig(), quietLogger())

	t.Run("flat project", func(t *testing.T) {
		series := seriesOf(-100000, 30000, 30000, 30000, 30000, 30000)
		result, warnings := calc.Calculate(context.Background(), series, 8)

		assert.Empty(t, warnings)
		assert.InDelta(t, 19781.30, result.NPV, 0.01)
		require.NotNil(t, result.IRRApprox)
		assert.InDelta(t, 15.2382, *result.IRRApprox, 1e-3)
		require.NotNil(t, result.PaybackPeriod)
		assert.InDelta(t, 3.3333, *result.PaybackPeriod, 1e-4)
		assert.Equal(t, "3.33", result.PaybackLabel())
		require.NotNil(t, result.DiscountedPaybackPeriod)
		assert.Greater(t, *result.DiscountedPaybackPeriod, *result.PaybackPeriod)
		assert.InDelta(t, 50.0, result.SimpleROI, 1e-9)
		assert.InDelta(t, 1.5, result.ReturnMultiple, 1e-9)
		assert.InDelta(t, 1.1978, result.ProfitabilityIndex, 1e-4)
		require.NotNil(t, result.CashFlowBreakevenMonths)
		assert.Equal(t, 40, *result.CashFlowBreakevenMonths)
		assert.InDelta(t, 68.77, result.Score, 0.05)
	})

	t.Run("never pays back", func(t *testing.T) {
		series := seriesOf(-500000, 180000, 160000, 140000)
		result, warnings := calc.Calculate(context.Background(), series, 15)

		assert.Nil(t, result.PaybackPeriod)
		assert.Equal(t, "never", result.PaybackLabel())
		assert.Less(t, result.NPV, 0.0)
		require.Len(t, warnings, 1)
		assert.Equal(t, WarningPaybackNeverMet, warnings[0].Code)
	})

	t.Run("no breakeven rate", func(t *testing.T) {
		series := seriesOf(-100, -10, -10)
		result, warnings := calc.Calculate(context.Background(), series, 10)

		assert.Nil(t, result.IRRApprox)
		assert.Nil(t, result.AnnualizedROI)
		codes := make([]string, 0, len(warnings))
		for _, w := range warnings {
			codes = append(codes, w.Code)
		}
		assert.Contains(t, codes, WarningNoBreakevenRate)
		assert.Contains(t, codes, WarningROIUndefined)
		assert.Contains(t, codes, WarningPaybackNeverMet)
	})

	t.Run("risk adjusted pass", func(t *testing.T) {
		series := seriesOf(-100000, 30000, 30000, 30000, 30000, 30000)
		result, _ := calc.Calculate(context.Background(), series, 8)
		adjusted := calc.WithRequiredReturn(result, series, 12)

		assert.Equal(t, result.NPV, adjusted.NPV)
		assert.Less(t, adjusted.RiskAdjustedNPV, adjusted.NPV)
	})
}
