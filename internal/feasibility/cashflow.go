package feasibility

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// Projector turns project inputs into a periodic cash-flow series
type Projector struct {
	cfg    Config
	logger *slog.Logger
}

// NewProjector creates a cash-flow projector
func NewProjector(cfg Config, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{cfg: cfg, logger: logger}
}

// Project builds the annual series for the project under the given mode.
// Period 0 carries the initial investment as an outflow; it is never amortized
// into operating flows.
func (p *Projector) Project(ctx context.Context, project Project, mc ModeConfig) (CashFlowSeries, error) {
	if err := p.validate(project, mc); err != nil {
		return CashFlowSeries{}, err
	}

	years := project.ExpectedLifespanYears
	flows := make([]CashFlow, 0, years+1)
	flows = append(flows, CashFlow{Period: 0, Amount: roundMoney(-project.InitialInvestment)})

	source := cashFlowSource(project)
	costRatio := p.cfg.OperatingCostRatio
	if project.OperatingCostRatio != nil {
		costRatio = *project.OperatingCostRatio
	}
	growth := project.IndustryGrowthRate / 100

	for t := 1; t <= years; t++ {
		var net float64
		switch source {
		case SourceNetCashFlows:
			net = project.NetCashFlows[t-1]
		case SourceRevenueSeries:
			net = project.RevenueSeries[t-1] * (1 - costRatio)
		case SourceRevenueDriver:
			revenue := project.BaseAnnualRevenue * math.Pow(1+growth, float64(t-1))
			net = revenue * (1 - costRatio)
		}
		// haircut scales inflows only
		if net > 0 {
			net *= mc.GrowthHaircut
		}
		if !isFinite(net) {
			return CashFlowSeries{}, invalidProject(sourceField(source), "projects a non-finite cash flow", fmt.Sprintf("period %d", t))
		}
		flows = append(flows, CashFlow{Period: t, Amount: roundMoney(net)})
	}

	series := CashFlowSeries{Flows: flows, Source: source}
	if !isFinite(series.TotalInflows()) {
		return CashFlowSeries{}, invalidProject(sourceField(source), "sum to a non-finite total", nil)
	}

	p.logger.DebugContext(ctx, "projected cash flows",
		"project_id", project.ID,
		"source", string(source),
		"periods", len(flows),
		"growth_haircut", mc.GrowthHaircut,
	)

	return series, nil
}

func (p *Projector) validate(project Project, mc ModeConfig) error {
	if project.ID == "" {
		return invalidProject("id", "is required", nil)
	}
	for _, in := range floatInputs(project) {
		if !isFinite(in.value) {
			return invalidProject(in.field, "must be a finite number", fmt.Sprint(in.value))
		}
	}
	if project.InitialInvestment <= 0 {
		return invalidProject("initialInvestment", "must be greater than zero", project.InitialInvestment)
	}
	if project.ExpectedLifespanYears <= 0 {
		return invalidProject("expectedLifespanYears", "must be greater than zero", project.ExpectedLifespanYears)
	}
	if project.ExpectedLifespanYears > p.cfg.MaxHorizonYears {
		return invalidProject("expectedLifespanYears", "exceeds the maximum horizon", project.ExpectedLifespanYears)
	}
	if project.DiscountRate <= -100 {
		return invalidProject("discountRate", "must be greater than -100", project.DiscountRate)
	}
	if project.IndustryGrowthRate <= -100 {
		return invalidProject("industryGrowthRate", "must be greater than -100", project.IndustryGrowthRate)
	}
	if project.CostOfCapital != nil && *project.CostOfCapital <= -100 {
		return invalidProject("costOfCapital", "must be greater than -100", *project.CostOfCapital)
	}
	if project.CurrentRate != nil && *project.CurrentRate <= -100 {
		return invalidProject("currentRate", "must be greater than -100", *project.CurrentRate)
	}
	current := project.EffectiveCurrentRate()
	if current-math.Abs(current)*mc.ScenarioSpread <= -100 {
		return invalidProject(currentRateField(project), "puts the optimistic rate scenario at or below -100", current)
	}
	if project.OperatingCostRatio != nil && (*project.OperatingCostRatio < 0 || *project.OperatingCostRatio >= 1) {
		return invalidProject("operatingCostRatio", "must be within [0,1)", *project.OperatingCostRatio)
	}

	switch cashFlowSource(project) {
	case SourceNetCashFlows:
		if len(project.NetCashFlows) < project.ExpectedLifespanYears {
			return invalidProject("netCashFlows", "must cover the expected lifespan", len(project.NetCashFlows))
		}
		for _, v := range project.NetCashFlows {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return invalidProject("netCashFlows", "must contain finite amounts", v)
			}
		}
	case SourceRevenueSeries:
		if len(project.RevenueSeries) < project.ExpectedLifespanYears {
			return invalidProject("revenueSeries", "must cover the expected lifespan", len(project.RevenueSeries))
		}
		for _, v := range project.RevenueSeries {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return invalidProject("revenueSeries", "must contain non-negative finite amounts", v)
			}
		}
	case SourceRevenueDriver:
		if project.BaseAnnualRevenue <= 0 {
			return invalidProject("baseAnnualRevenue", "one of netCashFlows, revenueSeries or a positive baseAnnualRevenue is required", project.BaseAnnualRevenue)
		}
	}

	for i, f := range project.RiskFactors {
		if !f.Category.IsValid() {
			return invalidProject("riskFactors.category", "is not a known category", string(f.Category))
		}
		if f.Probability < 0 || f.Probability > 1 {
			return invalidProject("riskFactors.probability", "must be within [0,1]", f.Probability)
		}
		if f.Impact < 0 || f.Impact > 1 {
			return invalidProject("riskFactors.impact", "must be within [0,1]", f.Impact)
		}
		if f.FinancialExposure != nil && *f.FinancialExposure < 0 {
			return invalidProject("riskFactors.financialExposure", "must be non-negative", i)
		}
	}

	if project.MarketMaturityHint != "" && !project.MarketMaturityHint.IsValid() {
		return invalidProject("marketMaturityHint", "is not a known stage", string(project.MarketMaturityHint))
	}
	if project.CompetitiveIntensity != nil && !inRange(*project.CompetitiveIntensity, 0, 100) {
		return invalidProject("competitiveIntensity", "must be within [0,100]", *project.CompetitiveIntensity)
	}
	if project.ResourceFlexibility != nil && !inRange(*project.ResourceFlexibility, 0, 100) {
		return invalidProject("resourceFlexibility", "must be within [0,100]", *project.ResourceFlexibility)
	}
	return nil
}

type floatInput struct {
	field string
	value float64
}

// floatInputs lists every scalar float input that is set on the project
func floatInputs(project Project) []floatInput {
	inputs := []floatInput{
		{"initialInvestment", project.InitialInvestment},
		{"industryGrowthRate", project.IndustryGrowthRate},
		{"baseAnnualRevenue", project.BaseAnnualRevenue},
		{"discountRate", project.DiscountRate},
	}
	optional := []struct {
		field string
		value *float64
	}{
		{"operatingCostRatio", project.OperatingCostRatio},
		{"costOfCapital", project.CostOfCapital},
		{"currentRate", project.CurrentRate},
		{"competitiveIntensity", project.CompetitiveIntensity},
		{"resourceFlexibility", project.ResourceFlexibility},
	}
	for _, o := range optional {
		if o.value != nil {
			inputs = append(inputs, floatInput{o.field, *o.value})
		}
	}
	for _, f := range project.RiskFactors {
		inputs = append(inputs,
			floatInput{"riskFactors.probability", f.Probability},
			floatInput{"riskFactors.impact", f.Impact})
		if f.FinancialExposure != nil {
			inputs = append(inputs, floatInput{"riskFactors.financialExposure", *f.FinancialExposure})
		}
	}
	return inputs
}

// currentRateField names the input EffectiveCurrentRate was taken from
func currentRateField(project Project) string {
	switch {
	case project.CurrentRate != nil:
		return "currentRate"
	case project.CostOfCapital != nil:
		return "costOfCapital"
	default:
		return "discountRate"
	}
}

func sourceField(source CashFlowSource) string {
	switch source {
	case SourceNetCashFlows:
		return "netCashFlows"
	case SourceRevenueSeries:
		return "revenueSeries"
	case SourceRevenueDriver:
		return "baseAnnualRevenue"
	}
	return string(source)
}

func cashFlowSource(project Project) CashFlowSource {
	switch {
	case len(project.NetCashFlows) > 0:
		return SourceNetCashFlows
	case len(project.RevenueSeries) > 0:
		return SourceRevenueSeries
	default:
		return SourceRevenueDriver
	}
}

// Amounts returns the raw amounts indexed by period
func (s CashFlowSeries) Amounts() []float64 {
	out := make([]float64, len(s.Flows))
	for i, f := range s.Flows {
		out[i] = f.Amount
	}
	return out
}

// Years returns the number of operating periods
func (s CashFlowSeries) Years() int {
	if len(s.Flows) == 0 {
		return 0
	}
	return len(s.Flows) - 1
}

// InitialOutlay returns the positive size of the period 0 investment
func (s CashFlowSeries) InitialOutlay() float64 {
	if len(s.Flows) == 0 {
		return 0
	}
	return -s.Flows[0].Amount
}

// TotalInflows sums operating flows of periods 1..N
func (s CashFlowSeries) TotalInflows() float64 {
	var total float64
	for _, f := range s.Flows[1:] {
		total += f.Amount
	}
	return total
}

// Monthly spreads each annual operating flow evenly across twelve months.
// Index 0 is the initial outlay; index m is month m.
func (s CashFlowSeries) Monthly() []float64 {
	if len(s.Flows) == 0 {
		return nil
	}
	out := make([]float64, 0, s.Years()*12+1)
	out = append(out, s.Flows[0].Amount)
	for _, f := range s.Flows[1:] {
		month := f.Amount / 12
		for i := 0; i < 12; i++ {
			out = append(out, month)
		}
	}
	return out
}
