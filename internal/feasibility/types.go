package feasibility

import (
	"time"
)

// Mode is the named parameter profile an analysis runs under
type Mode string

const (
	// ModeConservative discounts projected inflows and widens rate scenarios
	ModeConservative Mode = "conservative"
	// ModeBase applies no adjustment
	ModeBase Mode = "base"
	// ModeAggressive inflates projected inflows and narrows rate scenarios
	ModeAggressive Mode = "aggressive"
)

// AllModes lists every mode in evaluation order
var AllModes = []Mode{ModeConservative, ModeBase, ModeAggressive}

// String returns the string representation of the mode
func (m Mode) String() string {
	return string(m)
}

// IsValid checks if the mode is one of the closed set
func (m Mode) IsValid() bool {
	switch m {
	case ModeConservative, ModeBase, ModeAggressive:
		return true
	default:
		return false
	}
}

// ParseMode converts a user supplied string to a Mode. Empty input selects base.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeBase, nil
	}
	m := Mode(s)
	if !m.IsValid() {
		return "", &InvalidProjectError{Field: "mode", Reason: "must be one of conservative, base, aggressive", Value: s}
	}
	return m, nil
}

// RiskCategory groups qualitative risk factors
type RiskCategory string

const (
	RiskMarket      RiskCategory = "market"
	RiskFinancial   RiskCategory = "financial"
	RiskOperational RiskCategory = "operational"
	RiskRegulatory  RiskCategory = "regulatory"
	RiskTechnology  RiskCategory = "technology"
	RiskCompetitive RiskCategory = "competitive"
)

// AllRiskCategories lists the categories in the fixed order used for aggregation
var AllRiskCategories = []RiskCategory{
	RiskMarket,
	RiskFinancial,
	RiskOperational,
	RiskRegulatory,
	RiskTechnology,
	RiskCompetitive,
}

// IsValid checks if the category is known
func (c RiskCategory) IsValid() bool {
	switch c {
	case RiskMarket, RiskFinancial, RiskOperational, RiskRegulatory, RiskTechnology, RiskCompetitive:
		return true
	default:
		return false
	}
}

// RiskLevel is the banded classification of a risk score
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// MaturityStage is the market maturity classification
type MaturityStage string

const (
	StageEmerging  MaturityStage = "emerging"
	StageGrowth    MaturityStage = "growth"
	StageMature    MaturityStage = "mature"
	StageDeclining MaturityStage = "declining"
)

// IsValid checks if the stage is known
func (s MaturityStage) IsValid() bool {
	switch s {
	case StageEmerging, StageGrowth, StageMature, StageDeclining:
		return true
	default:
		return false
	}
}

// Recommendation is the final verdict tier
type Recommendation string

const (
	HighlyRecommended  Recommendation = "highly_recommended"
	Recommended        Recommendation = "recommended"
	ProceedWithCaution Recommendation = "proceed_with_caution"
	NotRecommended     Recommendation = "not_recommended"
)

// RiskFactor is a single qualitative risk supplied with the project
type RiskFactor struct {
	Category          RiskCategory `json:"category" yaml:"category"`
	Probability       float64      `json:"probability" yaml:"probability"`
	Impact            float64      `json:"impact" yaml:"impact"`
	Description       string       `json:"description,omitempty" yaml:"description"`
	FinancialExposure *float64     `json:"financialExposure,omitempty" yaml:"financial_exposure"`
}

// Severity returns probability x impact
func (f RiskFactor) Severity() float64 {
	return f.Probability * f.Impact
}

// Project is the immutable input describing a candidate business project.
// Rates are expressed in percent.
type Project struct {
	ID                    string        `json:"id" yaml:"id"`
	Name                  string        `json:"name,omitempty" yaml:"name"`
	InitialInvestment     float64       `json:"initialInvestment" yaml:"initial_investment"`
	IndustryGrowthRate    float64       `json:"industryGrowthRate" yaml:"industry_growth_rate"`
	NetCashFlows          []float64     `json:"netCashFlows,omitempty" yaml:"net_cash_flows"`
	RevenueSeries         []float64     `json:"revenueSeries,omitempty" yaml:"revenue_series"`
	BaseAnnualRevenue     float64       `json:"baseAnnualRevenue,omitempty" yaml:"base_annual_revenue"`
	OperatingCostRatio    *float64      `json:"operatingCostRatio,omitempty" yaml:"operating_cost_ratio"`
	ExpectedLifespanYears int           `json:"expectedLifespanYears" yaml:"expected_lifespan_years"`
	DiscountRate          float64       `json:"discountRate" yaml:"discount_rate"`
	CostOfCapital         *float64      `json:"costOfCapital,omitempty" yaml:"cost_of_capital"`
	CurrentRate           *float64      `json:"currentRate,omitempty" yaml:"current_rate"`
	RiskFactors           []RiskFactor  `json:"riskFactors,omitempty" yaml:"risk_factors"`
	MarketMaturityHint    MaturityStage `json:"marketMaturityHint,omitempty" yaml:"market_maturity_hint"`
	CompetitiveIntensity  *float64      `json:"competitiveIntensity,omitempty" yaml:"competitive_intensity"`
	ResourceFlexibility   *float64      `json:"resourceFlexibility,omitempty" yaml:"resource_flexibility"`
}

// EffectiveCostOfCapital returns the cost of capital, falling back to the discount rate
func (p Project) EffectiveCostOfCapital() float64 {
	if p.CostOfCapital != nil {
		return *p.CostOfCapital
	}
	return p.DiscountRate
}

// EffectiveCurrentRate returns the market rate, falling back to the cost of capital
func (p Project) EffectiveCurrentRate() float64 {
	if p.CurrentRate != nil {
		return *p.CurrentRate
	}
	return p.EffectiveCostOfCapital()
}

// CashFlow is a single period amount. Period 0 is the initial outlay.
type CashFlow struct {
	Period int     `json:"period"`
	Amount float64 `json:"amount"`
}

// CashFlowSource records which project input produced the series
type CashFlowSource string

const (
	SourceNetCashFlows  CashFlowSource = "net_cash_flows"
	SourceRevenueSeries CashFlowSource = "revenue_series"
	SourceRevenueDriver CashFlowSource = "revenue_driver"
)

// CashFlowSeries is the projected periodic cash flow of a project
type CashFlowSeries struct {
	Flows  []CashFlow     `json:"flows"`
	Source CashFlowSource `json:"source"`
}

// TimeValueResult holds discounting and return metrics
type TimeValueResult struct {
	NPV                     float64  `json:"npv"`
	RiskAdjustedNPV         float64  `json:"riskAdjustedNpv"`
	IRRApprox               *float64 `json:"irrApprox"`
	PaybackPeriod           *float64 `json:"paybackPeriod"`
	DiscountedPaybackPeriod *float64 `json:"discountedPaybackPeriod"`
	SimpleROI               float64  `json:"simpleROI"`
	AnnualizedROI           *float64 `json:"annualizedROI"`
	ReturnMultiple          float64  `json:"returnMultiple"`
	ProfitabilityIndex      float64  `json:"profitabilityIndex"`
	CashFlowBreakevenMonths *int     `json:"cashFlowBreakevenMonths"`
	Score                   float64  `json:"score"`
}

// PaybackLabel renders the payback period for display, "never" when undefined
func (r TimeValueResult) PaybackLabel() string {
	if r.PaybackPeriod == nil {
		return "never"
	}
	return formatYears(*r.PaybackPeriod)
}

// RiskResult holds the aggregated risk assessment
type RiskResult struct {
	OverallRiskScore float64                  `json:"overallRiskScore"`
	RiskLevel        RiskLevel                `json:"riskLevel"`
	RiskCategories   map[RiskCategory]float64 `json:"riskCategories"`
	HighRiskCount    int                      `json:"highRiskCount"`
	TotalExposure    float64                  `json:"totalExposure"`
	EarlyWarnings    []string                 `json:"earlyWarnings"`
	Score            float64                  `json:"score"`
}

// LengthTimeResult holds the lifecycle assessment
type LengthTimeResult struct {
	ProjectLifespan      int           `json:"projectLifespan"`
	OptimalExitTime      *int          `json:"optimalExitTime"`
	MarketMaturityStage  MaturityStage `json:"marketMaturityStage"`
	SustainabilityScore  float64       `json:"sustainabilityScore"`
	ScalabilityPotential float64       `json:"scalabilityPotential"`
	BusinessCycleImpact  float64       `json:"businessCycleImpact"`
	Score                float64       `json:"score"`
}

// RateScenario is one point of the interest-rate sensitivity profile
type RateScenario struct {
	Rate float64 `json:"rate"`
	NPV  float64 `json:"npv"`
}

// RateScenarios groups the three rate scenarios
type RateScenarios struct {
	Optimistic  RateScenario `json:"optimistic"`
	Base        RateScenario `json:"base"`
	Pessimistic RateScenario `json:"pessimistic"`
}

// InterestRateResult holds the rate environment and its effect on NPV
type InterestRateResult struct {
	CurrentRate    float64       `json:"currentRate"`
	CostOfCapital  float64       `json:"costOfCapital"`
	RiskPremium    float64       `json:"riskPremium"`
	RequiredReturn float64       `json:"requiredReturn"`
	RateScenarios  RateScenarios `json:"rateScenarios"`
	NPVSensitivity float64       `json:"npvSensitivity"`
	Score          float64       `json:"score"`
}

// AlternativeScenario is the outcome of the pipeline under one mode
type AlternativeScenario struct {
	Scenario     Mode           `json:"scenario"`
	Outcome      Recommendation `json:"outcome"`
	OverallScore float64        `json:"overallScore"`
	NPV          float64        `json:"npv"`
	Probability  float64        `json:"probability"`
}

// Warning is a recoverable condition embedded in an otherwise complete result
type Warning struct {
	Code    string `json:"code"`
	Metric  string `json:"metric"`
	Message string `json:"message"`
}

// AnalysisResult is the complete feasibility verdict for a project under one mode
type AnalysisResult struct {
	ProjectID            string                `json:"projectId"`
	Mode                 Mode                  `json:"mode"`
	Status               RunStatus             `json:"status"`
	OverallScore         float64               `json:"overallScore"`
	Recommendation       Recommendation        `json:"recommendation"`
	ConfidenceLevel      float64               `json:"confidenceLevel"`
	KeyStrengths         []string              `json:"keyStrengths"`
	KeyWeaknesses        []string              `json:"keyWeaknesses"`
	AlternativeScenarios []AlternativeScenario `json:"alternativeScenarios"`
	CashFlows            CashFlowSeries        `json:"cashFlows"`
	TimeValue            TimeValueResult       `json:"timeValue"`
	Risk                 RiskResult            `json:"risk"`
	Lifecycle            LengthTimeResult      `json:"lifecycle"`
	InterestRate         InterestRateResult    `json:"interestRate"`
	Warnings             []Warning             `json:"warnings"`
	AssessmentDate       time.Time             `json:"assessmentDate"`
}
