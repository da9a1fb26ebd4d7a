package feasibility

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Clock supplies the assessment timestamp
type Clock func() time.Time

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the clock used to stamp results
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithTimeout bounds runs whose context carries no deadline
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// Engine runs the feasibility pipeline. It holds only read-only configuration and
// is safe for concurrent use.
type Engine struct {
	cfg     Config
	logger  *slog.Logger
	clock   Clock
	timeout time.Duration

	projector  *Projector
	timeValue  *TimeValueCalculator
	risk       *RiskAggregator
	lifecycle  *LifecycleAnalyzer
	rates      *RateModeler
	aggregator *Aggregator
}

// NewEngine validates the configuration and wires the calculators
func NewEngine(cfg Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "feasibility_engine"))

	e := &Engine{
		cfg:        cfg,
		logger:     logger,
		clock:      time.Now,
		timeout:    DefaultAnalysisTimeout,
		projector:  NewProjector(cfg, logger),
		timeValue:  NewTimeValueCalculator(cfg, logger),
		risk:       NewRiskAggregator(cfg, logger),
		lifecycle:  NewLifecycleAnalyzer(cfg, logger),
		rates:      NewRateModeler(cfg, logger),
		aggregator: NewAggregator(cfg, logger),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// evaluation is the outcome of the pipeline under one mode
type evaluation struct {
	sub      subResults
	verdict  Verdict
	warnings []Warning
}

// RunAnalysis evaluates the project under mode and the alternative modes. An
// empty mode selects base. An *InvalidProjectError aborts the run without a result.
func (e *Engine) RunAnalysis(ctx context.Context, project Project, mode Mode) (*AnalysisResult, error) {
	if mode == "" {
		mode = ModeBase
	}
	state := NewRunState(project.ID, mode)

	mc, err := e.cfg.SelectMode(mode)
	if err != nil {
		_ = state.Fail(err)
		return nil, err
	}
	if err := state.Start(); err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	e.logger.InfoContext(ctx, "analysis started",
		"project_id", project.ID,
		"mode", string(mode),
	)

	primary, err := e.evaluate(ctx, project, mc)
	if err != nil {
		_ = state.Fail(err)
		e.logger.WarnContext(ctx, "analysis failed",
			"project_id", project.ID,
			"mode", string(mode),
			"error", err.Error(),
		)
		return nil, err
	}

	alternatives, err := e.alternatives(ctx, project, mode, primary)
	if err != nil {
		_ = state.Fail(err)
		return nil, err
	}

	if err := state.Complete(); err != nil {
		return nil, err
	}

	warnings := primary.warnings
	if warnings == nil {
		warnings = []Warning{}
	}

	result := &AnalysisResult{
		ProjectID:            project.ID,
		Mode:                 mode,
		Status:               state.Current(),
		OverallScore:         primary.verdict.OverallScore,
		Recommendation:       primary.verdict.Recommendation,
		ConfidenceLevel:      primary.verdict.ConfidenceLevel,
		KeyStrengths:         primary.verdict.KeyStrengths,
		KeyWeaknesses:        primary.verdict.KeyWeaknesses,
		AlternativeScenarios: alternatives,
		CashFlows:            primary.sub.series,
		TimeValue:            primary.sub.timeValue,
		Risk:                 primary.sub.risk,
		Lifecycle:            primary.sub.lifecycle,
		InterestRate:         primary.sub.rate,
		Warnings:             warnings,
		AssessmentDate:       e.clock().UTC(),
	}

	e.logger.InfoContext(ctx, "analysis completed",
		"project_id", project.ID,
		"mode", string(mode),
		"overall_score", result.OverallScore,
		"recommendation", string(result.Recommendation),
		"warnings", len(result.Warnings),
		"duration", time.Since(start),
	)

	return result, nil
}

// evaluate runs the pipeline once. Time value, risk and lifecycle are independent
// and run concurrently; the rate modeler needs the risk score and runs after the join.
func (e *Engine) evaluate(ctx context.Context, project Project, mc ModeConfig) (evaluation, error) {
	series, err := e.projector.Project(ctx, project, mc)
	if err != nil {
		return evaluation{}, err
	}

	var (
		tv         TimeValueResult
		tvWarnings []Warning
		risk       RiskResult
		lc         LengthTimeResult
		lcWarnings []Warning
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tv, tvWarnings = e.timeValue.Calculate(gctx, series, project.DiscountRate)
		return gctx.Err()
	})
	g.Go(func() error {
		risk = e.risk.Aggregate(gctx, project.RiskFactors)
		return gctx.Err()
	})
	g.Go(func() error {
		lc, lcWarnings = e.lifecycle.Analyze(gctx, project, series)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return evaluation{}, fmt.Errorf("analysis of %s interrupted: %w", project.ID, err)
	}

	rate := e.rates.Model(ctx, project, series, risk.OverallRiskScore, mc)
	tv = e.timeValue.WithRequiredReturn(tv, series, rate.RequiredReturn)
	if !finiteValuation(tv, rate) {
		return evaluation{}, invalidProject(sourceField(series.Source), "discount to a non-finite present value", nil)
	}

	sub := subResults{
		series:    series,
		timeValue: tv,
		risk:      risk,
		lifecycle: lc,
		rate:      rate,
	}

	warnings := make([]Warning, 0, len(tvWarnings)+len(lcWarnings))
	warnings = append(warnings, tvWarnings...)
	warnings = append(warnings, lcWarnings...)

	return evaluation{
		sub:      sub,
		verdict:  e.aggregator.Aggregate(ctx, project, sub),
		warnings: warnings,
	}, nil
}

// alternatives reports every mode's outcome. The run's own mode reuses the primary
// evaluation; the others are evaluated concurrently without recursing into RunAnalysis.
func (e *Engine) alternatives(ctx context.Context, project Project, mode Mode, primary evaluation) ([]AlternativeScenario, error) {
	out := make([]AlternativeScenario, len(AllModes))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range AllModes {
		mc := e.cfg.Modes[m]
		if m == mode {
			out[i] = scenarioFrom(m, mc, primary)
			continue
		}
		g.Go(func() error {
			ev, err := e.evaluate(gctx, project, mc)
			if err != nil {
				return err
			}
			out[i] = scenarioFrom(m, mc, ev)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// finiteValuation reports whether every discounted amount fits in a float64
func finiteValuation(tv TimeValueResult, rate InterestRateResult) bool {
	for _, v := range []float64{
		tv.NPV,
		tv.RiskAdjustedNPV,
		tv.ProfitabilityIndex,
		rate.RateScenarios.Optimistic.NPV,
		rate.RateScenarios.Base.NPV,
		rate.RateScenarios.Pessimistic.NPV,
		rate.NPVSensitivity,
	} {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

func scenarioFrom(m Mode, mc ModeConfig, ev evaluation) AlternativeScenario {
	return AlternativeScenario{
		Scenario:     m,
		Outcome:      ev.verdict.Recommendation,
		OverallScore: ev.verdict.OverallScore,
		NPV:          ev.sub.timeValue.NPV,
		Probability:  mc.ScenarioProbability,
	}
}
