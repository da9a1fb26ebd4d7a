// Package feasibility implements the feasibility and risk scoring engine.
//
// Given a candidate project's financial and qualitative inputs, the engine produces a
// multi-dimensional verdict: net present value and return metrics, a composite risk
// score, a lifecycle assessment, an interest-rate sensitivity profile and a weighted
// recommendation with confidence and alternative-scenario projections.
//
// # Core Components
//
// The pipeline is built from small calculators that share one read-only Config:
//
//  1. Projector: turns supplied net flows, a revenue series or a revenue driver into an
//     annual CashFlowSeries with the initial investment as the period 0 outflow
//  2. TimeValueCalculator: NPV, IRR, payback, discounted payback, ROI and breakeven
//  3. RiskAggregator: per-category and overall risk with fixed 25/50/75 bands
//  4. LifecycleAnalyzer: maturity stage, sustainability, scalability and optimal exit
//  5. RateModeler: risk premium, required return and rate scenarios
//  6. Aggregator: overall score, recommendation tier, confidence, strengths and weaknesses
//
// # Architecture
//
//   - types.go: Project, enums and result types
//   - mode.go: Mode parameter objects
//   - config.go: threshold, weight and solver tables with validation
//   - cashflow.go: cash-flow projection and input validation
//   - timevalue.go: discounting and return metrics
//   - risk.go: risk aggregation
//   - lifecycle.go: lifecycle assessment
//   - rates.go: interest-rate scenarios
//   - thresholds.go: badge thresholds shared with presentation layers
//   - recommendation.go: score blend, tiers and rule-based strengths and weaknesses
//   - state.go: run state machine
//   - engine.go: orchestration
//
// # Usage Example
//
//	engine, err := feasibility.NewEngine(feasibility.DefaultConfig(), slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := engine.RunAnalysis(ctx, feasibility.Project{
//	    ID:                    "warehouse-expansion",
//	    InitialInvestment:     100000,
//	    NetCashFlows:          []float64{30000, 30000, 30000, 30000, 30000},
//	    ExpectedLifespanYears: 5,
//	    IndustryGrowthRate:    10,
//	    DiscountRate:          8,
//	}, feasibility.ModeBase)
//	if err != nil {
//	    var invalid *feasibility.InvalidProjectError
//	    if errors.As(err, &invalid) {
//	        // reject the input
//	    }
//	    return err
//	}
//
//	fmt.Println(result.Recommendation, result.TimeValue.PaybackLabel())
//
// # Ordering
//
// Time value, risk and lifecycle are independent and run concurrently. The rate
// modeler consumes the overall risk score, so it runs after them, followed by a second
// NPV pass at the required return that fills RiskAdjustedNPV.
//
// # Modes
//
// A Mode selects a ModeConfig: conservative scales inflows by 0.85, raises the risk
// premium by 25% and widens rate scenarios to ±25% of the current rate; aggressive does
// the opposite. Every run also evaluates the other two modes and reports them as
// alternative scenarios with probabilities 25/50/25.
//
// # Failure Semantics
//
// Malformed input returns *InvalidProjectError and no result. A numeric search that
// finds no answer leaves its field nil and adds a Warning; the run still completes.
// Inconsistent tables are rejected by NewEngine with *ConfigurationError.
//
// # Determinism
//
// Identical inputs, mode and clock produce identical results. Categories are summed
// in a fixed order and AssessmentDate is stamped once from the injected Clock.
package feasibility
