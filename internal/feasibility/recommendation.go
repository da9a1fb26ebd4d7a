package feasibility

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"
)

// Default blend of the four sub-scores. The risk weight applies to the inverted risk score.
const (
	WeightTimeValue = 0.35
	WeightRisk      = 0.30
	WeightLifecycle = 0.20
	WeightRate      = 0.15
)

// Recommendation tier lower bounds, inclusive
const (
	TierHighlyRecommended  = 80.0
	TierRecommended        = 65.0
	TierProceedWithCaution = 45.0
)

// Confidence rules
const (
	confidenceStart              = 100.0
	confidenceSparseFactors      = 3
	confidenceSparsePenalty      = 10.0
	confidenceNoFactorsCap       = 70.0
	confidenceIRRPenalty         = 15.0
	confidenceExitPenalty        = 5.0
	confidenceROIPenalty         = 5.0
	confidenceQualitativePenalty = 5.0
	confidenceDerivedFlowPenalty = 5.0
)

// ClassifyRecommendation maps an overall score to its tier
func ClassifyRecommendation(score float64) Recommendation {
	switch {
	case score >= TierHighlyRecommended:
		return HighlyRecommended
	case score >= TierRecommended:
		return Recommended
	case score >= TierProceedWithCaution:
		return ProceedWithCaution
	default:
		return NotRecommended
	}
}

// Blend computes the weighted overall score. riskScore is the inverted risk
// sub-score, so lower risk contributes more.
func (sw ScoreWeights) Blend(timeValue, riskScore, lifecycle, rate float64) float64 {
	return clampScore(sw.TimeValue*timeValue + sw.Risk*riskScore + sw.Lifecycle*lifecycle + sw.Rate*rate)
}

// Verdict is the aggregated recommendation for one run
type Verdict struct {
	OverallScore    float64
	Recommendation  Recommendation
	ConfidenceLevel float64
	KeyStrengths    []string
	KeyWeaknesses   []string
}

// subResults carries every calculator output into the aggregator
type subResults struct {
	series    CashFlowSeries
	timeValue TimeValueResult
	risk      RiskResult
	lifecycle LengthTimeResult
	rate      InterestRateResult
}

// Aggregator combines the calculator outputs into a verdict
type Aggregator struct {
	cfg    Config
	logger *slog.Logger
}

// NewAggregator creates a recommendation aggregator
func NewAggregator(cfg Config, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{cfg: cfg, logger: logger}
}

// Aggregate produces the verdict
func (a *Aggregator) Aggregate(ctx context.Context, project Project, in subResults) Verdict {
	score := roundScore(a.cfg.ScoreWeights.Blend(
		in.timeValue.Score,
		in.risk.Score,
		in.lifecycle.Score,
		in.rate.Score,
	))

	strengths, weaknesses := evaluateRules(project, in)

	v := Verdict{
		OverallScore:    score,
		Recommendation:  ClassifyRecommendation(score),
		ConfidenceLevel: roundScore(Confidence(project, in.series.Source, in.timeValue, in.lifecycle)),
		KeyStrengths:    strengths,
		KeyWeaknesses:   weaknesses,
	}

	a.logger.DebugContext(ctx, "verdict aggregated",
		"project_id", project.ID,
		"overall_score", v.OverallScore,
		"recommendation", string(v.Recommendation),
		"confidence", v.ConfidenceLevel,
	)
	return v
}

// Confidence reflects how complete and certain the inputs were
func Confidence(project Project, source CashFlowSource, tv TimeValueResult, lc LengthTimeResult) float64 {
	c := confidenceStart

	factors := len(project.RiskFactors)
	if factors < confidenceSparseFactors {
		c -= confidenceSparsePenalty
	}
	if tv.IRRApprox == nil {
		c -= confidenceIRRPenalty
	}
	if lc.OptimalExitTime == nil {
		c -= confidenceExitPenalty
	}
	if tv.AnnualizedROI == nil {
		c -= confidenceROIPenalty
	}
	if project.CompetitiveIntensity == nil {
		c -= confidenceQualitativePenalty
	}
	if project.ResourceFlexibility == nil {
		c -= confidenceQualitativePenalty
	}
	if source == SourceRevenueDriver {
		c -= confidenceDerivedFlowPenalty
	}
	if factors == 0 {
		c = math.Min(c, confidenceNoFactorsCap)
	}
	return clampScore(c)
}

// evaluateRules builds strengths and weaknesses in a fixed order
func evaluateRules(project Project, in subResults) (strengths, weaknesses []string) {
	strengths = []string{}
	weaknesses = []string{}

	badge := func(label string, score float64) {
		switch ScoreBadge(score) {
		case BadgeGood:
			strengths = append(strengths, fmt.Sprintf("Strong %s score (%.1f)", label, score))
		case BadgePoor:
			weaknesses = append(weaknesses, fmt.Sprintf("Weak %s score (%.1f)", label, score))
		}
	}

	tv := in.timeValue
	badge("time-value", tv.Score)
	if len(project.RiskFactors) > 0 {
		badge("risk", in.risk.Score)
	}
	badge("lifecycle", in.lifecycle.Score)
	badge("interest-rate", in.rate.Score)

	if tv.NPV > 0 {
		strengths = append(strengths, "Positive NPV of "+formatMoney(tv.NPV))
	} else {
		weaknesses = append(weaknesses, "Non-positive NPV of "+formatMoney(tv.NPV))
	}
	if tv.ProfitabilityIndex >= ProfitabilityIndexGood {
		strengths = append(strengths, fmt.Sprintf("Profitability index of %.2f", tv.ProfitabilityIndex))
	}

	switch {
	case tv.IRRApprox == nil:
		weaknesses = append(weaknesses, "IRR could not be determined")
	case *tv.IRRApprox >= in.rate.RequiredReturn:
		strengths = append(strengths, fmt.Sprintf("IRR of %.2f%% exceeds the required return of %.2f%%", *tv.IRRApprox, in.rate.RequiredReturn))
	default:
		weaknesses = append(weaknesses, fmt.Sprintf("IRR of %.2f%% is below the required return of %.2f%%", *tv.IRRApprox, in.rate.RequiredReturn))
	}

	years := float64(in.series.Years())
	switch {
	case tv.PaybackPeriod == nil:
		weaknesses = append(weaknesses, "Investment is not paid back within the project lifespan")
	case *tv.PaybackPeriod <= years*PaybackGoodFraction:
		strengths = append(strengths, fmt.Sprintf("Quick payback of %s years", tv.PaybackLabel()))
	}

	if len(project.RiskFactors) == 0 {
		weaknesses = append(weaknesses, "No risk factors were assessed")
	} else {
		switch RiskBadge(in.risk.RiskLevel) {
		case BadgeGood:
			strengths = append(strengths, "Low overall risk")
		case BadgePoor:
			weaknesses = append(weaknesses, fmt.Sprintf("Overall risk is %s (%.1f)", in.risk.RiskLevel, in.risk.OverallRiskScore))
		}
	}

	switch in.lifecycle.MarketMaturityStage {
	case StageGrowth:
		strengths = append(strengths, "Market is in its growth stage")
	case StageDeclining:
		weaknesses = append(weaknesses, "Market is declining")
	}

	if in.rate.NPVSensitivity > NPVSensitivityPoor {
		weaknesses = append(weaknesses, "NPV is highly sensitive to interest rates")
	}

	return strengths, weaknesses
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
