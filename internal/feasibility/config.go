package feasibility

import (
	"fmt"
	"math"
	"time"
)

// Engine defaults
const (
	DefaultOperatingCostRatio      = 0.60
	DefaultMaxRiskPremium          = 6.0 // percentage points at a risk score of 100
	DefaultMinMarginalContribution = 0.02
	DefaultIRRLowerBound           = -0.99
	DefaultIRRUpperBound           = 5.0
	DefaultIRRTolerance            = 1e-7
	DefaultIRRMaxIterations        = 200
	DefaultMaxHorizonYears         = 50
	DefaultAnalysisTimeout         = 10 * time.Second

	// probabilityTolerance bounds the drift allowed when mode probabilities are summed
	probabilityTolerance = 0.01
	weightTolerance      = 0.001
)

// ScoreWeights blends the four sub-scores into the overall score
type ScoreWeights struct {
	TimeValue float64 `json:"timeValue" yaml:"time_value"`
	Risk      float64 `json:"risk" yaml:"risk"`
	Lifecycle float64 `json:"lifecycle" yaml:"lifecycle"`
	Rate      float64 `json:"rate" yaml:"rate"`
}

// DefaultScoreWeights returns the named default blend
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		TimeValue: WeightTimeValue,
		Risk:      WeightRisk,
		Lifecycle: WeightLifecycle,
		Rate:      WeightRate,
	}
}

// IsValid checks if weights are non-negative and sum to 1
func (sw ScoreWeights) IsValid() bool {
	if sw.TimeValue < 0 || sw.Risk < 0 || sw.Lifecycle < 0 || sw.Rate < 0 {
		return false
	}
	sum := sw.TimeValue + sw.Risk + sw.Lifecycle + sw.Rate
	return math.Abs(sum-1.0) < weightTolerance
}

// Normalize ensures weights sum to 1
func (sw *ScoreWeights) Normalize() {
	sum := sw.TimeValue + sw.Risk + sw.Lifecycle + sw.Rate
	if sum > 0 {
		sw.TimeValue /= sum
		sw.Risk /= sum
		sw.Lifecycle /= sum
		sw.Rate /= sum
	}
}

// MaturityThreshold is one row of the growth-rate classification table.
// A row matches when growth > Above, or growth >= Above if Inclusive.
type MaturityThreshold struct {
	Stage     MaturityStage `json:"stage" yaml:"stage"`
	Above     float64       `json:"above" yaml:"above"`
	Inclusive bool          `json:"inclusive" yaml:"inclusive"`
}

// Matches reports whether the growth rate falls in this row
func (mt MaturityThreshold) Matches(growth float64) bool {
	if mt.Inclusive {
		return growth >= mt.Above
	}
	return growth > mt.Above
}

// StageProfile holds the qualitative scores associated with a maturity stage
type StageProfile struct {
	Sustainability float64 `json:"sustainability" yaml:"sustainability"`
	Scalability    float64 `json:"scalability" yaml:"scalability"`
	Cyclicality    float64 `json:"cyclicality" yaml:"cyclicality"`
}

// Config is the read-only engine configuration: mode multipliers, weight and
// threshold tables, solver bounds. It is loaded once at start-up.
type Config struct {
	Modes                   map[Mode]ModeConfig           `json:"modes" yaml:"modes"`
	ScoreWeights            ScoreWeights                  `json:"scoreWeights" yaml:"score_weights"`
	CategoryWeights         map[RiskCategory]float64      `json:"categoryWeights" yaml:"category_weights"`
	MaturityThresholds      []MaturityThreshold           `json:"maturityThresholds" yaml:"maturity_thresholds"`
	FallbackStage           MaturityStage                 `json:"fallbackStage" yaml:"fallback_stage"`
	StageProfiles           map[MaturityStage]StageProfile `json:"stageProfiles" yaml:"stage_profiles"`
	OperatingCostRatio      float64                       `json:"operatingCostRatio" yaml:"operating_cost_ratio"`
	MaxRiskPremium          float64                       `json:"maxRiskPremium" yaml:"max_risk_premium"`
	MinMarginalContribution float64                       `json:"minMarginalContribution" yaml:"min_marginal_contribution"`
	IRRLowerBound           float64                       `json:"irrLowerBound" yaml:"irr_lower_bound"`
	IRRUpperBound           float64                       `json:"irrUpperBound" yaml:"irr_upper_bound"`
	IRRTolerance            float64                       `json:"irrTolerance" yaml:"irr_tolerance"`
	IRRMaxIterations        int                           `json:"irrMaxIterations" yaml:"irr_max_iterations"`
	MaxHorizonYears         int                           `json:"maxHorizonYears" yaml:"max_horizon_years"`
}

// DefaultMaturityThresholds returns the documented classification table
func DefaultMaturityThresholds() []MaturityThreshold {
	return []MaturityThreshold{
		{Stage: StageEmerging, Above: 15, Inclusive: false},
		{Stage: StageGrowth, Above: 5, Inclusive: true},
		{Stage: StageMature, Above: 0, Inclusive: true},
	}
}

// DefaultStageProfiles returns the qualitative scores per stage
func DefaultStageProfiles() map[MaturityStage]StageProfile {
	return map[MaturityStage]StageProfile{
		StageEmerging:  {Sustainability: 60, Scalability: 90, Cyclicality: 70},
		StageGrowth:    {Sustainability: 85, Scalability: 80, Cyclicality: 50},
		StageMature:    {Sustainability: 70, Scalability: 50, Cyclicality: 35},
		StageDeclining: {Sustainability: 30, Scalability: 20, Cyclicality: 80},
	}
}

// DefaultCategoryWeights weights every risk category equally
func DefaultCategoryWeights() map[RiskCategory]float64 {
	weights := make(map[RiskCategory]float64, len(AllRiskCategories))
	for _, c := range AllRiskCategories {
		weights[c] = 1.0
	}
	return weights
}

// DefaultConfig returns the engine configuration used when no tables file is supplied
func DefaultConfig() Config {
	return Config{
		Modes:                   DefaultModeConfigs(),
		ScoreWeights:            DefaultScoreWeights(),
		CategoryWeights:         DefaultCategoryWeights(),
		MaturityThresholds:      DefaultMaturityThresholds(),
		FallbackStage:           StageDeclining,
		StageProfiles:           DefaultStageProfiles(),
		OperatingCostRatio:      DefaultOperatingCostRatio,
		MaxRiskPremium:          DefaultMaxRiskPremium,
		MinMarginalContribution: DefaultMinMarginalContribution,
		IRRLowerBound:           DefaultIRRLowerBound,
		IRRUpperBound:           DefaultIRRUpperBound,
		IRRTolerance:            DefaultIRRTolerance,
		IRRMaxIterations:        DefaultIRRMaxIterations,
		MaxHorizonYears:         DefaultMaxHorizonYears,
	}
}

// Validate checks the tables for completeness and consistency
func (c Config) Validate() error {
	for _, m := range AllModes {
		mc, ok := c.Modes[m]
		if !ok {
			return &ConfigurationError{Field: "modes", Reason: fmt.Sprintf("missing entry for %s", m)}
		}
		if !mc.IsValid() {
			return &ConfigurationError{Field: "modes." + string(m), Reason: "multipliers out of range"}
		}
	}
	for m := range c.Modes {
		if !m.IsValid() {
			return &ConfigurationError{Field: "modes", Reason: fmt.Sprintf("unknown mode %q", m)}
		}
	}

	var probability float64
	for _, m := range AllModes {
		probability += c.Modes[m].ScenarioProbability
	}
	if math.Abs(probability-100) > probabilityTolerance {
		return &ConfigurationError{Field: "modes.scenario_probability", Reason: fmt.Sprintf("must sum to 100, got %.4f", probability)}
	}

	if !c.ScoreWeights.IsValid() {
		return &ConfigurationError{Field: "score_weights", Reason: "must be non-negative and sum to 1"}
	}

	for _, cat := range AllRiskCategories {
		w, ok := c.CategoryWeights[cat]
		if !ok {
			return &ConfigurationError{Field: "category_weights", Reason: fmt.Sprintf("missing entry for %s", cat)}
		}
		if w <= 0 {
			return &ConfigurationError{Field: "category_weights." + string(cat), Reason: "must be positive"}
		}
	}

	if len(c.MaturityThresholds) == 0 {
		return &ConfigurationError{Field: "maturity_thresholds", Reason: "table is empty"}
	}
	for i, row := range c.MaturityThresholds {
		if !row.Stage.IsValid() {
			return &ConfigurationError{Field: fmt.Sprintf("maturity_thresholds[%d]", i), Reason: fmt.Sprintf("unknown stage %q", row.Stage)}
		}
		if i > 0 && row.Above >= c.MaturityThresholds[i-1].Above {
			return &ConfigurationError{Field: fmt.Sprintf("maturity_thresholds[%d]", i), Reason: "thresholds must be strictly descending"}
		}
	}
	if !c.FallbackStage.IsValid() {
		return &ConfigurationError{Field: "fallback_stage", Reason: fmt.Sprintf("unknown stage %q", c.FallbackStage)}
	}
	for _, s := range []MaturityStage{StageEmerging, StageGrowth, StageMature, StageDeclining} {
		p, ok := c.StageProfiles[s]
		if !ok {
			return &ConfigurationError{Field: "stage_profiles", Reason: fmt.Sprintf("missing entry for %s", s)}
		}
		if !inRange(p.Sustainability, 0, 100) || !inRange(p.Scalability, 0, 100) || !inRange(p.Cyclicality, 0, 100) {
			return &ConfigurationError{Field: "stage_profiles." + string(s), Reason: "scores must be within [0,100]"}
		}
	}

	if c.OperatingCostRatio < 0 || c.OperatingCostRatio >= 1 {
		return &ConfigurationError{Field: "operating_cost_ratio", Reason: "must be within [0,1)"}
	}
	if c.MaxRiskPremium < 0 {
		return &ConfigurationError{Field: "max_risk_premium", Reason: "must be non-negative"}
	}
	if c.MinMarginalContribution < 0 {
		return &ConfigurationError{Field: "min_marginal_contribution", Reason: "must be non-negative"}
	}
	if c.IRRLowerBound <= -1 || c.IRRUpperBound <= c.IRRLowerBound {
		return &ConfigurationError{Field: "irr_bounds", Reason: "lower bound must exceed -100% and be below the upper bound"}
	}
	if c.IRRTolerance <= 0 || c.IRRMaxIterations <= 0 {
		return &ConfigurationError{Field: "irr_solver", Reason: "tolerance and iteration budget must be positive"}
	}
	if c.MaxHorizonYears <= 0 {
		return &ConfigurationError{Field: "max_horizon_years", Reason: "must be positive"}
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
