package feasibility

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), quietLogger(), WithClock(fixedClock))
	require.NoError(t, err)
	return engine
}

// flatProject invests 100k for five flat 30k years at 8%
func flatProject() Project {
	return Project{
		ID:                    "flat-30k",
		Name:                  "Flat cash flow",
		InitialInvestment:     100000,
		NetCashFlows:          []float64{30000, 30000, 30000, 30000, 30000},
		ExpectedLifespanYears: 5,
		IndustryGrowthRate:    10,
		DiscountRate:          8,
		RiskFactors: []RiskFactor{
			{Category: RiskMarket, Probability: 0.4, Impact: 0.5, Description: "demand softening"},
			{Category: RiskOperational, Probability: 0.3, Impact: 0.4, Description: "supplier delays"},
		},
	}
}

// decliningProject invests 500k into a shrinking market at 15%
func decliningProject() Project {
	return Project{
		ID:                    "declining-500k",
		InitialInvestment:     500000,
		NetCashFlows:          []float64{180000, 160000, 140000},
		ExpectedLifespanYears: 3,
		IndustryGrowthRate:    -5,
		DiscountRate:          15,
		RiskFactors: []RiskFactor{
			{Category: RiskMarket, Probability: 0.6, Impact: 0.7},
			{Category: RiskFinancial, Probability: 0.5, Impact: 0.6},
		},
	}
}

func seriesOf(amounts ...float64) CashFlowSeries {
	flows := make([]CashFlow, len(amounts))
	for i, a := range amounts {
		flows[i] = CashFlow{Period: i, Amount: a}
	}
	return CashFlowSeries{Flows: flows, Source: SourceNetCashFlows}
}
