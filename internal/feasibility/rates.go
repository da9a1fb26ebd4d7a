package feasibility

import (
	"context"
	"log/slog"
	"math"
)

// RateModeler derives the required return and the NPV sensitivity to interest rates
type RateModeler struct {
	cfg    Config
	logger *slog.Logger
}

// NewRateModeler creates an interest-rate scenario modeler
func NewRateModeler(cfg Config, logger *slog.Logger) *RateModeler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateModeler{cfg: cfg, logger: logger}
}

// Model computes the rate environment. It consumes the overall risk score, so it
// must run after risk aggregation.
func (m *RateModeler) Model(ctx context.Context, project Project, series CashFlowSeries, overallRiskScore float64, mc ModeConfig) InterestRateResult {
	current := project.EffectiveCurrentRate()
	costOfCapital := project.EffectiveCostOfCapital()
	premium := overallRiskScore / 100 * m.cfg.MaxRiskPremium * mc.RiskPremiumFactor

	// spread is symmetric around the current rate, even for a negative rate
	spread := math.Abs(current) * mc.ScenarioSpread
	amounts := series.Amounts()
	investment := series.InitialOutlay()

	scenario := func(rate float64) RateScenario {
		return RateScenario{Rate: roundRatio(rate), NPV: roundMoney(NPV(amounts, rate/100))}
	}

	optimisticNPV := NPV(amounts, (current-spread)/100)
	pessimisticNPV := NPV(amounts, (current+spread)/100)

	result := InterestRateResult{
		CurrentRate:    roundRatio(current),
		CostOfCapital:  roundRatio(costOfCapital),
		RiskPremium:    roundRatio(premium),
		RequiredReturn: roundRatio(costOfCapital + premium),
		RateScenarios: RateScenarios{
			Optimistic:  scenario(current - spread),
			Base:        scenario(current),
			Pessimistic: scenario(current + spread),
		},
		NPVSensitivity: roundRatio((optimisticNPV - pessimisticNPV) / investment),
		Score:          roundScore(clampScore(50 + 100*pessimisticNPV/investment)),
	}

	m.logger.DebugContext(ctx, "rate scenarios modeled",
		"current_rate", result.CurrentRate,
		"risk_premium", result.RiskPremium,
		"required_return", result.RequiredReturn,
		"spread", spread,
		"score", result.Score,
	)

	return result
}
