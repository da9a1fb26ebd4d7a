package exporter

import (
	"strconv"
	"strings"
	"time"

	"feasibility/internal/feasibility"
)

// Section headers shared by the CSV and XLSX renderings
var (
	cashFlowHeaders = []string{"Period", "Amount", "Cumulative"}
	riskHeaders     = []string{"Category", "Score"}
	scenarioHeaders = []string{"Scenario", "Outcome", "Overall Score", "NPV", "Probability"}
	rateHeaders     = []string{"Rate Scenario", "Rate", "NPV"}
)

// summaryRows flattens the headline figures of a result into label/value pairs
func summaryRows(r *feasibility.AnalysisResult) [][]string {
	tv := r.TimeValue
	rows := [][]string{
		{"Project", r.ProjectID},
		{"Mode", string(r.Mode)},
		{"Assessment Date", r.AssessmentDate.UTC().Format(time.RFC3339)},
		{"Overall Score", formatFloat(r.OverallScore)},
		{"Recommendation", string(r.Recommendation)},
		{"Confidence Level", formatFloat(r.ConfidenceLevel)},
		{"NPV", formatFloat(tv.NPV)},
		{"Risk Adjusted NPV", formatFloat(tv.RiskAdjustedNPV)},
		{"IRR (approx)", formatOptional(tv.IRRApprox)},
		{"Payback Period (years)", tv.PaybackLabel()},
		{"Discounted Payback (years)", formatOptional(tv.DiscountedPaybackPeriod)},
		{"Simple ROI", formatPercent(tv.SimpleROI)},
		{"Annualized ROI", formatOptional(tv.AnnualizedROI)},
		{"Profitability Index", formatFloat(tv.ProfitabilityIndex)},
		{"Cash Flow Breakeven (months)", formatOptionalInt(tv.CashFlowBreakevenMonths)},
		{"Time Value Score", formatFloat(tv.Score)},
		{"Risk Score", formatFloat(r.Risk.OverallRiskScore)},
		{"Risk Level", string(r.Risk.RiskLevel)},
		{"Risk Component Score", formatFloat(r.Risk.Score)},
		{"Market Maturity", string(r.Lifecycle.MarketMaturityStage)},
		{"Optimal Exit (year)", formatOptionalInt(r.Lifecycle.OptimalExitTime)},
		{"Lifecycle Score", formatFloat(r.Lifecycle.Score)},
		{"Required Return", formatPercent(r.InterestRate.RequiredReturn)},
		{"NPV Sensitivity", formatFloat(r.InterestRate.NPVSensitivity)},
		{"Interest Rate Score", formatFloat(r.InterestRate.Score)},
		{"Key Strengths", strings.Join(r.KeyStrengths, "; ")},
		{"Key Weaknesses", strings.Join(r.KeyWeaknesses, "; ")},
	}
	for _, w := range r.Warnings {
		rows = append(rows, []string{"Warning", w.Code + ": " + w.Message})
	}
	return rows
}

// cashFlowRows lists the projected series with a running total
func cashFlowRows(r *feasibility.AnalysisResult) [][]string {
	rows := make([][]string, 0, len(r.CashFlows.Flows))
	var cumulative float64
	for _, cf := range r.CashFlows.Flows {
		cumulative += cf.Amount
		rows = append(rows, []string{
			strconv.Itoa(cf.Period),
			formatFloat(cf.Amount),
			formatFloat(cumulative),
		})
	}
	return rows
}

// riskRows lists category scores in the fixed aggregation order
func riskRows(r *feasibility.AnalysisResult) [][]string {
	rows := make([][]string, 0, len(feasibility.AllRiskCategories))
	for _, c := range feasibility.AllRiskCategories {
		score, ok := r.Risk.RiskCategories[c]
		if !ok {
			continue
		}
		rows = append(rows, []string{string(c), formatFloat(score)})
	}
	return rows
}

// scenarioRows lists the alternative mode outcomes
func scenarioRows(r *feasibility.AnalysisResult) [][]string {
	rows := make([][]string, 0, len(r.AlternativeScenarios))
	for _, s := range r.AlternativeScenarios {
		rows = append(rows, []string{
			string(s.Scenario),
			string(s.Outcome),
			formatFloat(s.OverallScore),
			formatFloat(s.NPV),
			formatPercent(s.Probability),
		})
	}
	return rows
}

// rateRows lists the interest-rate scenarios
func rateRows(r *feasibility.AnalysisResult) [][]string {
	sc := r.InterestRate.RateScenarios
	return [][]string{
		{"optimistic", formatPercent(sc.Optimistic.Rate), formatFloat(sc.Optimistic.NPV)},
		{"base", formatPercent(sc.Base.Rate), formatFloat(sc.Base.NPV)},
		{"pessimistic", formatPercent(sc.Pessimistic.Rate), formatFloat(sc.Pessimistic.NPV)},
	}
}

// BatchHeaders heads the one-line-per-project summary of a batch run
var BatchHeaders = []string{"Project", "Source", "Mode", "Overall Score", "Recommendation", "Risk Level", "NPV", "Payback Period (years)", "Error"}

// BatchRecord is the summary line of one project file. A failed run keeps
// only the source and the error.
func BatchRecord(source string, r *feasibility.AnalysisResult, err error) []string {
	if err != nil || r == nil {
		msg := "no result"
		if err != nil {
			msg = err.Error()
		}
		return []string{"", source, "", "", "", "", "", "", msg}
	}
	return []string{
		r.ProjectID,
		source,
		string(r.Mode),
		formatFloat(r.OverallScore),
		string(r.Recommendation),
		string(r.Risk.RiskLevel),
		formatFloat(r.TimeValue.NPV),
		r.TimeValue.PaybackLabel(),
		"",
	}
}
