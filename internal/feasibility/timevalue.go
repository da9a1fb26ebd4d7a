package feasibility

import (
	"context"
	"log/slog"
	"math"
)

// TimeValueCalculator computes discounting and return metrics over a cash-flow series
type TimeValueCalculator struct {
	cfg    Config
	logger *slog.Logger
}

// NewTimeValueCalculator creates a time-value calculator
func NewTimeValueCalculator(cfg Config, logger *slog.Logger) *TimeValueCalculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TimeValueCalculator{cfg: cfg, logger: logger}
}

// Calculate computes every time-value metric at the project discount rate.
// Non-convergence is returned as warnings alongside a complete result.
func (c *TimeValueCalculator) Calculate(ctx context.Context, series CashFlowSeries, discountRate float64) (TimeValueResult, []Warning) {
	amounts := series.Amounts()
	investment := series.InitialOutlay()
	years := series.Years()
	rate := discountRate / 100

	var warnings []Warning
	result := TimeValueResult{}

	npv := NPV(amounts, rate)
	result.NPV = roundMoney(npv)
	result.RiskAdjustedNPV = result.NPV

	irr, err := IRR(amounts, c.cfg.IRRLowerBound, c.cfg.IRRUpperBound, c.cfg.IRRTolerance, c.cfg.IRRMaxIterations)
	if err != nil {
		c.logger.WarnContext(ctx, "irr unavailable", "error", err.Error())
		warnings = append(warnings, err.AsWarning())
	} else {
		result.IRRApprox = floatPtr(roundRatio(irr * 100))
	}

	if pb, ok := PaybackPeriod(amounts); ok {
		result.PaybackPeriod = floatPtr(roundRatio(pb))
	} else {
		warnings = append(warnings, Warning{
			Code:    WarningPaybackNeverMet,
			Metric:  "paybackPeriod",
			Message: "cumulative cash flow never turns non-negative within the horizon",
		})
	}
	if dpb, ok := PaybackPeriod(DiscountedFlows(amounts, rate)); ok {
		result.DiscountedPaybackPeriod = floatPtr(roundRatio(dpb))
	}

	totalInflows := series.TotalInflows()
	result.ProfitabilityIndex = roundRatio((npv + investment) / investment)
	result.ReturnMultiple = roundRatio(totalInflows / investment)
	simpleROI := (totalInflows - investment) / investment * 100
	result.SimpleROI = roundRatio(simpleROI)

	if annualized, ok := AnnualizedROI(simpleROI, years); ok {
		result.AnnualizedROI = floatPtr(roundRatio(annualized))
	} else {
		warnings = append(warnings, Warning{
			Code:    WarningROIUndefined,
			Metric:  "annualizedROI",
			Message: "total return base is negative; annualized ROI is undefined",
		})
	}

	if months, ok := BreakevenMonth(series.Monthly()); ok {
		result.CashFlowBreakevenMonths = intPtr(months)
	}

	result.Score = roundScore(c.score(result, discountRate, years))

	c.logger.DebugContext(ctx, "time value calculated",
		"npv", result.NPV,
		"irr_solved", result.IRRApprox != nil,
		"payback", result.PaybackLabel(),
		"score", result.Score,
	)

	return result, warnings
}

// WithRequiredReturn fills the risk-adjusted NPV pass at the chained required return
func (c *TimeValueCalculator) WithRequiredReturn(result TimeValueResult, series CashFlowSeries, requiredReturn float64) TimeValueResult {
	result.RiskAdjustedNPV = roundMoney(NPV(series.Amounts(), requiredReturn/100))
	return result
}

func (c *TimeValueCalculator) score(r TimeValueResult, discountRate float64, years int) float64 {
	npvComponent := clampScore(50 + 100*(r.ProfitabilityIndex-1))

	irrComponent := 0.0
	if r.IRRApprox != nil {
		irrComponent = clampScore(50 + 5*(*r.IRRApprox-discountRate))
	}

	paybackComponent := 0.0
	if r.PaybackPeriod != nil && years > 0 {
		paybackComponent = clampScore(150 * (float64(years) - *r.PaybackPeriod) / float64(years))
	}

	return 0.4*npvComponent + 0.3*irrComponent + 0.3*paybackComponent
}

// NPV discounts amounts indexed by period at rate (a fraction)
func NPV(amounts []float64, rate float64) float64 {
	var npv float64
	factor := 1.0
	for t, cf := range amounts {
		if t > 0 {
			factor *= 1 + rate
		}
		npv += cf / factor
	}
	return npv
}

// npvDerivative is d(NPV)/d(rate)
func npvDerivative(amounts []float64, rate float64) float64 {
	var d float64
	for t, cf := range amounts {
		if t == 0 {
			continue
		}
		d -= float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return d
}

// DiscountedFlows returns each amount divided by its discount factor
func DiscountedFlows(amounts []float64, rate float64) []float64 {
	out := make([]float64, len(amounts))
	factor := 1.0
	for t, cf := range amounts {
		if t > 0 {
			factor *= 1 + rate
		}
		out[t] = cf / factor
	}
	return out
}

// IRR finds the rate in [lo, hi] where NPV is zero. The bracket is narrowed by
// bisection and then polished with Newton steps that must stay inside it. When
// the NPV has the same sign at both bounds there is no breakeven rate and a
// warning is returned instead of a boundary value.
func IRR(amounts []float64, lo, hi, tolerance float64, maxIterations int) (float64, *NumericNonConvergenceWarning) {
	fLo := NPV(amounts, lo)
	fHi := NPV(amounts, hi)

	if fLo == 0 {
		return lo, nil
	}
	if fHi == 0 {
		return hi, nil
	}
	if math.Signbit(fLo) == math.Signbit(fHi) || math.IsNaN(fLo) || math.IsNaN(fHi) {
		return 0, &NumericNonConvergenceWarning{
			Metric: "irrApprox",
			Code:   WarningNoBreakevenRate,
			Reason: "no sign change in NPV over the search domain; no breakeven rate",
		}
	}

	for i := 0; i < maxIterations; i++ {
		mid := lo + (hi-lo)/2
		fMid := NPV(amounts, mid)
		if fMid == 0 || (hi-lo)/2 < tolerance {
			return newtonPolish(amounts, mid, lo, hi, tolerance), nil
		}
		if math.Signbit(fMid) == math.Signbit(fLo) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}

	return 0, &NumericNonConvergenceWarning{
		Metric:     "irrApprox",
		Code:       WarningIRRNotConverged,
		Iterations: maxIterations,
		Reason:     "bisection did not reach the tolerance within the iteration budget",
	}
}

func newtonPolish(amounts []float64, guess, lo, hi, tolerance float64) float64 {
	x := guess
	for i := 0; i < 5; i++ {
		d := npvDerivative(amounts, x)
		if d == 0 || math.IsNaN(d) {
			return x
		}
		next := x - NPV(amounts, x)/d
		if next < lo || next > hi || math.IsNaN(next) {
			return x
		}
		if math.Abs(next-x) < tolerance {
			return next
		}
		x = next
	}
	return x
}

// PaybackPeriod returns the first period where the cumulative amount turns
// non-negative, linearly interpolated inside that period.
func PaybackPeriod(amounts []float64) (float64, bool) {
	if len(amounts) == 0 {
		return 0, false
	}
	cumulative := amounts[0]
	if cumulative >= 0 {
		return 0, true
	}
	for t := 1; t < len(amounts); t++ {
		prev := cumulative
		cumulative += amounts[t]
		if cumulative >= 0 {
			if amounts[t] <= 0 {
				return float64(t), true
			}
			return float64(t-1) + (-prev)/amounts[t], true
		}
	}
	return 0, false
}

// AnnualizedROI converts a simple ROI percentage into a compound annual rate.
// A negative base would need a fractional power of a negative number, so it is
// reported as undefined.
func AnnualizedROI(simpleROI float64, years int) (float64, bool) {
	if years <= 0 {
		return 0, false
	}
	base := 1 + simpleROI/100
	if base < 0 {
		return 0, false
	}
	return (math.Pow(base, 1/float64(years)) - 1) * 100, true
}

// BreakevenMonth returns the first month whose cumulative amount reaches zero
func BreakevenMonth(monthly []float64) (int, bool) {
	if len(monthly) == 0 {
		return 0, false
	}
	cumulative := monthly[0]
	for m := 1; m < len(monthly); m++ {
		cumulative += monthly[m]
		// small tolerance absorbs the twelfth-splitting of cent-rounded amounts
		if cumulative >= -1e-6 {
			return m, true
		}
	}
	return 0, false
}
