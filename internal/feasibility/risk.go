package feasibility

import (
	"context"
	"fmt"
	"log/slog"
)

// Risk band thresholds. Lower bounds are inclusive: a score of exactly 25 is medium.
const (
	RiskMediumThreshold   = 25.0
	RiskHighThreshold     = 50.0
	RiskCriticalThreshold = 75.0

	// earlyWarningSeverity flags a single factor whose probability and impact both reach it
	earlyWarningSeverity = 0.7
)

// ClassifyRisk maps a risk score to its band
func ClassifyRisk(score float64) RiskLevel {
	switch {
	case score >= RiskCriticalThreshold:
		return RiskLevelCritical
	case score >= RiskHighThreshold:
		return RiskLevelHigh
	case score >= RiskMediumThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// RiskAggregator scores qualitative risk factors per category and overall
type RiskAggregator struct {
	cfg    Config
	logger *slog.Logger
}

// NewRiskAggregator creates a risk aggregator
func NewRiskAggregator(cfg Config, logger *slog.Logger) *RiskAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &RiskAggregator{cfg: cfg, logger: logger}
}

// Aggregate scores the factors. A category score is the mean probability x impact of
// its factors scaled to 100, so the maximum achievable score is 100. The overall score
// is the weighted mean of the categories that have at least one factor.
func (a *RiskAggregator) Aggregate(ctx context.Context, factors []RiskFactor) RiskResult {
	result := RiskResult{
		RiskCategories: make(map[RiskCategory]float64),
		EarlyWarnings:  []string{},
	}

	sums := make(map[RiskCategory]float64)
	counts := make(map[RiskCategory]int)
	var exposure float64

	for _, f := range factors {
		severity := f.Severity()
		sums[f.Category] += severity
		counts[f.Category]++

		if level := ClassifyRisk(severity * 100); level == RiskLevelHigh || level == RiskLevelCritical {
			result.HighRiskCount++
		}
		if f.FinancialExposure != nil {
			exposure += severity * *f.FinancialExposure
		}
		if f.Probability >= earlyWarningSeverity && f.Impact >= earlyWarningSeverity {
			label := f.Description
			if label == "" {
				label = string(f.Category) + " factor"
			}
			result.EarlyWarnings = append(result.EarlyWarnings,
				fmt.Sprintf("%s: probability %.0f%% with impact %.0f%%", label, f.Probability*100, f.Impact*100))
		}
	}

	var weighted, totalWeight float64
	for _, cat := range AllRiskCategories {
		n := counts[cat]
		if n == 0 {
			continue
		}
		score := sums[cat] / float64(n) * 100
		result.RiskCategories[cat] = roundScore(score)

		w := a.cfg.CategoryWeights[cat]
		weighted += score * w
		totalWeight += w

		if ClassifyRisk(score) == RiskLevelCritical {
			result.EarlyWarnings = append(result.EarlyWarnings,
				fmt.Sprintf("%s risk is critical (%.1f)", cat, score))
		}
	}

	if totalWeight > 0 {
		result.OverallRiskScore = roundScore(clampScore(weighted / totalWeight))
	}
	result.RiskLevel = ClassifyRisk(result.OverallRiskScore)
	result.TotalExposure = roundMoney(exposure)
	result.Score = roundScore(100 - result.OverallRiskScore)

	a.logger.DebugContext(ctx, "risk aggregated",
		"factors", len(factors),
		"categories", len(result.RiskCategories),
		"overall", result.OverallRiskScore,
		"level", string(result.RiskLevel),
		"high_risk_count", result.HighRiskCount,
	)

	return result
}
