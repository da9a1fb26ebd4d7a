package testutil

import (
	"feasibility/internal/feasibility"
)

// FlatProject invests 100k for five flat 30k years discounted at 8%
func FlatProject() feasibility.Project {
	return feasibility.Project{
		ID:                    "flat-30k",
		Name:                  "Flat cash flow",
		InitialInvestment:     100000,
		NetCashFlows:          []float64{30000, 30000, 30000, 30000, 30000},
		ExpectedLifespanYears: 5,
		IndustryGrowthRate:    10,
		DiscountRate:          8,
		RiskFactors: []feasibility.RiskFactor{
			{Category: feasibility.RiskMarket, Probability: 0.4, Impact: 0.5, Description: "demand softening"},
			{Category: feasibility.RiskOperational, Probability: 0.3, Impact: 0.4, Description: "supplier delays"},
		},
	}
}

// DecliningProject invests 500k into a shrinking market discounted at 15%
func DecliningProject() feasibility.Project {
	return feasibility.Project{
		ID:                    "declining-500k",
		Name:                  "Declining market",
		InitialInvestment:     500000,
		NetCashFlows:          []float64{180000, 160000, 140000},
		ExpectedLifespanYears: 3,
		IndustryGrowthRate:    -5,
		DiscountRate:          15,
		RiskFactors: []feasibility.RiskFactor{
			{Category: feasibility.RiskMarket, Probability: 0.6, Impact: 0.7},
			{Category: feasibility.RiskFinancial, Probability: 0.5, Impact: 0.6},
		},
	}
}

// RevenueDrivenProject has no explicit flows; they are derived from a base revenue
func RevenueDrivenProject() feasibility.Project {
	return feasibility.Project{
		ID:                    "driver-250k",
		Name:                  "Revenue driver",
		InitialInvestment:     250000,
		BaseAnnualRevenue:     180000,
		ExpectedLifespanYears: 6,
		IndustryGrowthRate:    7,
		DiscountRate:          9,
	}
}

// ProjectWithID returns the flat project under another identifier
func ProjectWithID(id string) feasibility.Project {
	p := FlatProject()
	p.ID = id
	return p
}
