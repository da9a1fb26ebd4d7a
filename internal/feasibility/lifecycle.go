package feasibility

import (
	"context"
	"log/slog"
	"math"
)

// neutralQualitative is used when a qualitative input is not supplied
const neutralQualitative = 50.0

// LifecycleAnalyzer estimates market maturity, sustainability and the optimal exit period
type LifecycleAnalyzer struct {
	cfg    Config
	logger *slog.Logger
}

// NewLifecycleAnalyzer creates a lifecycle analyzer
func NewLifecycleAnalyzer(cfg Config, logger *slog.Logger) *LifecycleAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleAnalyzer{cfg: cfg, logger: logger}
}

// Analyze produces the lifecycle assessment for the projected series
func (a *LifecycleAnalyzer) Analyze(ctx context.Context, project Project, series CashFlowSeries) (LengthTimeResult, []Warning) {
	var warnings []Warning

	stage := a.ClassifyStage(project.IndustryGrowthRate, project.MarketMaturityHint)
	profile := a.cfg.StageProfiles[stage]

	competitive := neutralQualitative
	if project.CompetitiveIntensity != nil {
		competitive = *project.CompetitiveIntensity
	}
	flexibility := neutralQualitative
	if project.ResourceFlexibility != nil {
		flexibility = *project.ResourceFlexibility
	}
	momentum := clampScore(50 + 2.5*project.IndustryGrowthRate)

	sustainability := clampScore(0.4*profile.Sustainability + 0.3*(100-competitive) + 0.3*flexibility)
	scalability := clampScore(0.4*profile.Scalability + 0.3*flexibility + 0.3*momentum)
	cycle := clampScore(0.6*profile.Cyclicality + 0.4*clampScore(coefficientOfVariation(series)*100))

	result := LengthTimeResult{
		ProjectLifespan:      series.Years(),
		MarketMaturityStage:  stage,
		SustainabilityScore:  roundScore(sustainability),
		ScalabilityPotential: roundScore(scalability),
		BusinessCycleImpact:  roundScore(cycle),
	}

	exit, ok := OptimalExit(series, project.DiscountRate/100, a.cfg.MinMarginalContribution)
	if ok {
		result.OptimalExitTime = intPtr(exit)
	} else {
		w := NumericNonConvergenceWarning{
			Metric: "optimalExitTime",
			Code:   WarningExitNotFound,
			Reason: "first period contribution is already below the minimum",
		}
		warnings = append(warnings, w.AsWarning())
	}

	result.Score = roundScore(clampScore(0.4*sustainability + 0.3*scalability + 0.3*(100-cycle)))

	a.logger.DebugContext(ctx, "lifecycle analyzed",
		"stage", string(stage),
		"exit_found", ok,
		"score", result.Score,
	)

	return result, warnings
}

// ClassifyStage walks the threshold table in order. A supplied hint takes precedence.
func (a *LifecycleAnalyzer) ClassifyStage(growth float64, hint MaturityStage) MaturityStage {
	if hint != "" && hint.IsValid() {
		return hint
	}
	for _, row := range a.cfg.MaturityThresholds {
		if row.Matches(growth) {
			return row.Stage
		}
	}
	return a.cfg.FallbackStage
}

// OptimalExit returns the last period before marginal discounted contribution first
// drops below minContribution x the initial outlay. The full lifespan is returned when
// every period contributes; ok is false when period 1 already fails.
func OptimalExit(series CashFlowSeries, rate, minContribution float64) (int, bool) {
	years := series.Years()
	if years == 0 {
		return 0, false
	}
	floor := minContribution * series.InitialOutlay()
	discounted := DiscountedFlows(series.Amounts(), rate)
	for t := 1; t <= years; t++ {
		if discounted[t] < 0 || discounted[t] < floor {
			if t == 1 {
				return 0, false
			}
			return t - 1, true
		}
	}
	return years, true
}

// coefficientOfVariation measures volatility of the operating flows. A zero mean
// with any dispersion counts as fully volatile.
func coefficientOfVariation(series CashFlowSeries) float64 {
	n := series.Years()
	if n < 2 {
		return 0
	}
	flows := series.Amounts()[1:]
	var mean float64
	for _, v := range flows {
		mean += v
	}
	mean /= float64(n)

	var variance float64
	for _, v := range flows {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(n))
	if std == 0 {
		return 0
	}
	if mean == 0 {
		return 1
	}
	return std / math.Abs(mean)
}
