package feasibility

import (
	"math"

	"github.com/shopspring/decimal"
)

// roundMoney rounds a currency amount to cents, half away from zero
func roundMoney(v float64) float64 {
	return roundPlaces(v, 2)
}

// roundScore rounds a score or ratio to two decimals for stable output
func roundScore(v float64) float64 {
	return roundPlaces(v, 2)
}

// roundRatio keeps four decimals, used for rates and multiples
func roundRatio(v float64) float64 {
	return roundPlaces(v, 4)
}

// roundPlaces leaves NaN and infinities as they are
func roundPlaces(v float64, places int32) float64 {
	if !isFinite(v) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampScore(v float64) float64 {
	return clamp(v, 0, 100)
}

func formatYears(years float64) string {
	if !isFinite(years) {
		return "never"
	}
	return decimal.NewFromFloat(years).StringFixed(2)
}

func floatPtr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}
