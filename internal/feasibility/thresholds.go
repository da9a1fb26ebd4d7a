package feasibility

// Badge thresholds shared with presentation layers. A sub-score at or above
// ScoreGoodThreshold is a strength; below ScorePoorThreshold it is a weakness.
const (
	ScoreGoodThreshold = 80.0
	ScorePoorThreshold = 60.0
)

// Metric thresholds used by the strength and weakness rules
const (
	// PaybackGoodFraction marks a payback within this share of the lifespan as quick
	PaybackGoodFraction = 0.5
	// ProfitabilityIndexGood marks value creation well above the outlay
	ProfitabilityIndexGood = 1.2
	// NPVSensitivityPoor marks an NPV swing across rate scenarios larger than this share of the outlay
	NPVSensitivityPoor = 0.25
)

// Badge is the color band a score falls in
type Badge string

const (
	BadgeGood    Badge = "good"
	BadgeNeutral Badge = "neutral"
	BadgePoor    Badge = "poor"
)

// ScoreBadge classifies a 0-100 score with the shared thresholds
func ScoreBadge(score float64) Badge {
	switch {
	case score >= ScoreGoodThreshold:
		return BadgeGood
	case score < ScorePoorThreshold:
		return BadgePoor
	default:
		return BadgeNeutral
	}
}

// RiskBadge classifies a risk level. Lower risk is better. Every level is
// matched explicitly.
func RiskBadge(level RiskLevel) Badge {
	switch level {
	case RiskLevelLow:
		return BadgeGood
	case RiskLevelMedium:
		return BadgeNeutral
	case RiskLevelHigh, RiskLevelCritical:
		return BadgePoor
	}
	return BadgeNeutral
}

// RecommendationBadge classifies a recommendation tier
func RecommendationBadge(r Recommendation) Badge {
	switch r {
	case HighlyRecommended, Recommended:
		return BadgeGood
	case ProceedWithCaution:
		return BadgeNeutral
	case NotRecommended:
		return BadgePoor
	}
	return BadgeNeutral
}
