package feasibility

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectorSources(t *testing.T) {
	cfg := DefaultConfig()
	projector := NewProjector(cfg, quietLogger())
	ctx := context.Background()
	base := cfg.Modes[ModeBase]

	t.Run("net cash flows", func(t *testing.T) {
		series, err := projector.Project(ctx, flatProject(), base)
		require.NoError(t, err)
		assert.Equal(t, SourceNetCashFlows, series.Source)
		assert.Equal(t, []float64{-100000, 30000, 30000, 30000, 30000, 30000}, series.Amounts())
		assert.Equal(t, 5, series.Years())
		assert.Equal(t, 100000.0, series.InitialOutlay())
		assert.Equal(t, 150000.0, series.TotalInflows())
	})

	t.Run("extra net flows beyond lifespan are ignored", func(t *testing.T) {
		p := flatProject()
		p.NetCashFlows = append(p.NetCashFlows, 99999)
		series, err := projector.Project(ctx, p, base)
		require.NoError(t, err)
		assert.Equal(t, 5, series.Years())
	})

	t.Run("revenue series uses cost ratio", func(t *testing.T) {
		ratio := 0.5
		p := Project{
			ID:                    "rev",
			InitialInvestment:     1000,
			RevenueSeries:         []float64{1000, 2000},
			OperatingCostRatio:    &ratio,
			ExpectedLifespanYears: 2,
			DiscountRate:          10,
		}
		series, err := projector.Project(ctx, p, base)
		require.NoError(t, err)
		assert.Equal(t, SourceRevenueSeries, series.Source)
		assert.Equal(t, []float64{-1000, 500, 1000}, series.Amounts())
	})

	t.Run("revenue driver compounds growth", func(t *testing.T) {
		p := Project{
			ID:                    "driver",
			InitialInvestment:     50000,
			BaseAnnualRevenue:     100000,
			IndustryGrowthRate:    10,
			ExpectedLifespanYears: 3,
			DiscountRate:          8,
		}
		series, err := projector.Project(ctx, p, base)
		require.NoError(t, err)
		assert.Equal(t, SourceRevenueDriver, series.Source)
		amounts := series.Amounts()
		assert.InDelta(t, 40000, amounts[1], 0.001)
		assert.InDelta(t, 44000, amounts[2], 0.001)
		assert.InDelta(t, 48400, amounts[3], 0.001)
	})

	t.Run("haircut scales inflows only", func(t *testing.T) {
		p := flatProject()
		p.NetCashFlows = []float64{30000, -10000, 30000, 30000, 30000}
		series, err := projector.Project(ctx, p, cfg.Modes[ModeConservative])
		require.NoError(t, err)
		amounts := series.Amounts()
		assert.Equal(t, -100000.0, amounts[0])
		assert.Equal(t, 25500.0, amounts[1])
		assert.Equal(t, -10000.0, amounts[2])
	})

	t.Run("aggressive inflates inflows", func(t *testing.T) {
		series, err := projector.Project(ctx, flatProject(), cfg.Modes[ModeAggressive])
		require.NoError(t, err)
		assert.InDelta(t, 34500, series.Amounts()[1], 0.001)
	})

	t.Run("amounts are rounded to cents", func(t *testing.T) {
		p := flatProject()
		p.NetCashFlows = []float64{1000.006, 1, 1, 1, 1}
		series, err := projector.Project(ctx, p, base)
		require.NoError(t, err)
		assert.Equal(t, 1000.01, series.Amounts()[1])
	})
}

func TestProjectorValidation(t *testing.T) {
	projector := NewProjector(DefaultConfig(), quietLogger())
	ctx := context.Background()
	base := DefaultModeConfigs()[ModeBase]
	negative := -5.0
	tooHigh := 120.0
	badRatio := 1.0
	nan := math.NaN()
	inf := math.Inf(1)
	deepNegative := -85.0

	tests := []struct {
		name   string
		mutate func(p *Project)
		field  string
	}{
		{"missing id", func(p *Project) { p.ID = "" }, "id"},
		{"zero investment", func(p *Project) { p.InitialInvestment = 0 }, "initialInvestment"},
		{"negative investment", func(p *Project) { p.InitialInvestment = -1 }, "initialInvestment"},
		{"nan investment", func(p *Project) { p.InitialInvestment = math.NaN() }, "initialInvestment"},
		{"zero lifespan", func(p *Project) { p.ExpectedLifespanYears = 0 }, "expectedLifespanYears"},
		{"lifespan beyond horizon", func(p *Project) { p.ExpectedLifespanYears = 51 }, "expectedLifespanYears"},
		{"discount rate", func(p *Project) { p.DiscountRate = -100 }, "discountRate"},
		{"growth rate", func(p *Project) { p.IndustryGrowthRate = -150 }, "industryGrowthRate"},
		{"short net flows", func(p *Project) { p.NetCashFlows = p.NetCashFlows[:3] }, "netCashFlows"},
		{"infinite net flow", func(p *Project) { p.NetCashFlows[2] = math.Inf(1) }, "netCashFlows"},
		{"no cash flow source", func(p *Project) { p.NetCashFlows = nil }, "baseAnnualRevenue"},
		{"negative revenue", func(p *Project) {
			p.NetCashFlows = nil
			p.RevenueSeries = []float64{10, -1, 10, 10, 10}
		}, "revenueSeries"},
		{"cost ratio", func(p *Project) { p.OperatingCostRatio = &badRatio }, "operatingCostRatio"},
		{"unknown category", func(p *Project) { p.RiskFactors[0].Category = "weather" }, "riskFactors.category"},
		{"probability above one", func(p *Project) { p.RiskFactors[0].Probability = 1.2 }, "riskFactors.probability"},
		{"negative impact", func(p *Project) { p.RiskFactors[1].Impact = -0.1 }, "riskFactors.impact"},
		{"negative exposure", func(p *Project) { p.RiskFactors[0].FinancialExposure = &negative }, "riskFactors.financialExposure"},
		{"unknown hint", func(p *Project) { p.MarketMaturityHint = "saturated" }, "marketMaturityHint"},
		{"competitive intensity", func(p *Project) { p.CompetitiveIntensity = &tooHigh }, "competitiveIntensity"},
		{"resource flexibility", func(p *Project) { p.ResourceFlexibility = &negative }, "resourceFlexibility"},
		{"nan discount rate", func(p *Project) { p.DiscountRate = math.NaN() }, "discountRate"},
		{"infinite discount rate", func(p *Project) { p.DiscountRate = math.Inf(1) }, "discountRate"},
		{"nan growth rate", func(p *Project) { p.IndustryGrowthRate = math.NaN() }, "industryGrowthRate"},
		{"nan base revenue", func(p *Project) { p.BaseAnnualRevenue = math.NaN() }, "baseAnnualRevenue"},
		{"nan cost ratio", func(p *Project) { p.OperatingCostRatio = &nan }, "operatingCostRatio"},
		{"infinite cost of capital", func(p *Project) { p.CostOfCapital = &inf }, "costOfCapital"},
		{"nan current rate", func(p *Project) { p.CurrentRate = &nan }, "currentRate"},
		{"nan competitive intensity", func(p *Project) { p.CompetitiveIntensity = &nan }, "competitiveIntensity"},
		{"nan resource flexibility", func(p *Project) { p.ResourceFlexibility = &nan }, "resourceFlexibility"},
		{"nan probability", func(p *Project) { p.RiskFactors[0].Probability = math.NaN() }, "riskFactors.probability"},
		{"nan impact", func(p *Project) { p.RiskFactors[1].Impact = math.NaN() }, "riskFactors.impact"},
		{"infinite exposure", func(p *Project) { p.RiskFactors[0].FinancialExposure = &inf }, "riskFactors.financialExposure"},
		{"inflows overflow", func(p *Project) { p.NetCashFlows = []float64{1e308, 1e308, 1e308, 1e308, 1e308} }, "netCashFlows"},
		{"revenue driver overflow", func(p *Project) {
			p.NetCashFlows = nil
			p.BaseAnnualRevenue = 1e300
			p.IndustryGrowthRate = 1e6
		}, "baseAnnualRevenue"},
		{"optimistic rate at or below -100", func(p *Project) { p.CurrentRate = &deepNegative }, "currentRate"},
		{"optimistic rate from discount rate", func(p *Project) { p.DiscountRate = -90 }, "discountRate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := flatProject()
			tt.mutate(&p)
			_, err := projector.Project(ctx, p, base)
			require.Error(t, err)

			var invalid *InvalidProjectError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestProjectorModeDependentLimits(t *testing.T) {
	cfg := DefaultConfig()
	projector := NewProjector(cfg, quietLogger())
	ctx := context.Background()

	t.Run("haircut overflow", func(t *testing.T) {
		p := flatProject()
		p.NetCashFlows = []float64{1.7e308, 1, 1, 1, 1}

		_, err := projector.Project(ctx, p, cfg.Modes[ModeBase])
		require.NoError(t, err)

		_, err = projector.Project(ctx, p, cfg.Modes[ModeAggressive])
		var invalid *InvalidProjectError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "netCashFlows", invalid.Field)
	})

	t.Run("negative current rate", func(t *testing.T) {
		p := flatProject()
		current := -80.0
		p.CurrentRate = &current

		_, err := projector.Project(ctx, p, cfg.Modes[ModeBase])
		require.NoError(t, err)

		_, err = projector.Project(ctx, p, cfg.Modes[ModeConservative])
		var invalid *InvalidProjectError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "currentRate", invalid.Field)
	})
}

func TestMonthlySeries(t *testing.T) {
	monthly := seriesOf(-1200, 120, 240).Monthly()
	require.Len(t, monthly, 25)
	assert.Equal(t, -1200.0, monthly[0])
	assert.Equal(t, 10.0, monthly[1])
	assert.Equal(t, 20.0, monthly[24])
}

func TestRoundingKeepsNonFiniteValues(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.True(t, math.IsNaN(roundMoney(math.NaN())))
		assert.True(t, math.IsInf(roundRatio(math.Inf(-1)), -1))
		assert.True(t, math.IsInf(roundScore(math.Inf(1)), 1))
		assert.Equal(t, "never", formatYears(math.Inf(1)))
	})
	assert.Equal(t, 12.35, roundMoney(12.345))
}
