package api

import (
	"time"

	"feasibility/internal/feasibility"
)

// ModeInfo describes the parameters one analysis mode applies
type ModeInfo struct {
	Name                feasibility.Mode `json:"name"`
	GrowthHaircut       float64          `json:"growthHaircut"`
	RiskPremiumFactor   float64          `json:"riskPremiumFactor"`
	ScenarioSpread      float64          `json:"scenarioSpread"`
	ScenarioProbability float64          `json:"scenarioProbability"`
}

// ModesResponse lists every mode in evaluation order
type ModesResponse struct {
	Modes []ModeInfo `json:"modes"`
}

// StoredAnalysis is a cached analysis returned by the lookup endpoint
type StoredAnalysis struct {
	Fingerprint string                      `json:"fingerprint"`
	StoredAt    time.Time                   `json:"storedAt"`
	Result      *feasibility.AnalysisResult `json:"result"`
}
