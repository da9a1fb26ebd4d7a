package feasibility

import "fmt"

// ModeConfig is the parameter object a Mode selects. Every calculator reads its
// mode-dependent multipliers from here.
type ModeConfig struct {
	// GrowthHaircut scales every projected inflow
	GrowthHaircut float64 `json:"growthHaircut" yaml:"growth_haircut"`
	// RiskPremiumFactor scales the risk premium added to the cost of capital
	RiskPremiumFactor float64 `json:"riskPremiumFactor" yaml:"risk_premium_factor"`
	// ScenarioSpread is the fraction of the current rate used for rate scenarios
	ScenarioSpread float64 `json:"scenarioSpread" yaml:"scenario_spread"`
	// ScenarioProbability is the weight, in percent, of this mode among alternative scenarios
	ScenarioProbability float64 `json:"scenarioProbability" yaml:"scenario_probability"`
}

// IsValid checks if the multipliers are usable
func (mc ModeConfig) IsValid() bool {
	return mc.GrowthHaircut > 0 && mc.RiskPremiumFactor >= 0 &&
		mc.ScenarioSpread >= 0 && mc.ScenarioSpread < 1 &&
		mc.ScenarioProbability >= 0 && mc.ScenarioProbability <= 100
}

// DefaultModeConfigs returns the documented multipliers for each mode
func DefaultModeConfigs() map[Mode]ModeConfig {
	return map[Mode]ModeConfig{
		ModeConservative: {
			GrowthHaircut:       0.85,
			RiskPremiumFactor:   1.25,
			ScenarioSpread:      0.25,
			ScenarioProbability: 25,
		},
		ModeBase: {
			GrowthHaircut:       1.0,
			RiskPremiumFactor:   1.0,
			ScenarioSpread:      0.20,
			ScenarioProbability: 50,
		},
		ModeAggressive: {
			GrowthHaircut:       1.15,
			RiskPremiumFactor:   0.75,
			ScenarioSpread:      0.15,
			ScenarioProbability: 25,
		},
	}
}

// SelectMode resolves the parameter object for a mode
func (c Config) SelectMode(m Mode) (ModeConfig, error) {
	if !m.IsValid() {
		return ModeConfig{}, invalidProject("mode", "must be one of conservative, base, aggressive", string(m))
	}
	mc, ok := c.Modes[m]
	if !ok {
		return ModeConfig{}, &ConfigurationError{Field: "modes", Reason: fmt.Sprintf("missing entry for %s", m)}
	}
	return mc, nil
}
