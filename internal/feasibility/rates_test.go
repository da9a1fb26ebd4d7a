package feasibility

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateModeler(t *testing.T) {
	cfg := DefaultConfig()
	modeler := NewRateModeler(cfg, quietLogger())
	ctx := context.Background()
	series := seriesOf(-100000, 30000, 30000, 30000, 30000, 30000)

	t.Run("base mode", func(t *testing.T) {
		result := modeler.Model(ctx, flatProject(), series, 16, cfg.Modes[ModeBase])

		assert.Equal(t, 8.0, result.CurrentRate)
		assert.Equal(t, 8.0, result.CostOfCapital)
		assert.InDelta(t, 0.96, result.RiskPremium, 1e-9)
		assert.InDelta(t, 8.96, result.RequiredReturn, 1e-9)
		assert.InDelta(t, 6.4, result.RateScenarios.Optimistic.Rate, 1e-9)
		assert.InDelta(t, 8.0, result.RateScenarios.Base.Rate, 1e-9)
		assert.InDelta(t, 9.6, result.RateScenarios.Pessimistic.Rate, 1e-9)
		assert.InDelta(t, 19781.30, result.RateScenarios.Base.NPV, 0.01)
		assert.InDelta(t, 0.1011, result.NPVSensitivity, 1e-4)
		assert.InDelta(t, 64.90, result.Score, 0.01)
	})

	t.Run("conservative mode scales the premium", func(t *testing.T) {
		result := modeler.Model(ctx, flatProject(), series, 40, cfg.Modes[ModeConservative])
		// 0.4 * 6 * 1.25
		assert.InDelta(t, 3.0, result.RiskPremium, 1e-9)
		assert.InDelta(t, 11.0, result.RequiredReturn, 1e-9)
		assert.InDelta(t, 6.0, result.RateScenarios.Optimistic.Rate, 1e-9)
	})

	t.Run("explicit rates", func(t *testing.T) {
		project := flatProject()
		coc, current := 10.0, 5.0
		project.CostOfCapital = &coc
		project.CurrentRate = &current
		result := modeler.Model(ctx, project, series, 0, cfg.Modes[ModeBase])

		assert.Equal(t, 5.0, result.CurrentRate)
		assert.Equal(t, 10.0, result.CostOfCapital)
		assert.Equal(t, 10.0, result.RequiredReturn)
		assert.InDelta(t, 4.0, result.RateScenarios.Optimistic.Rate, 1e-9)
		assert.InDelta(t, 6.0, result.RateScenarios.Pessimistic.Rate, 1e-9)
	})

	t.Run("scenario ordering", func(t *testing.T) {
		for _, rate := range []float64{0.5, 3, 8, 15, 30} {
			project := flatProject()
			project.DiscountRate = rate
			for _, m := range AllModes {
				result := modeler.Model(ctx, project, series, 50, cfg.Modes[m])
				sc := result.RateScenarios
				assert.Less(t, sc.Optimistic.Rate, sc.Base.Rate, "rate %.1f mode %s", rate, m)
				assert.Less(t, sc.Base.Rate, sc.Pessimistic.Rate, "rate %.1f mode %s", rate, m)
				assert.Greater(t, sc.Optimistic.NPV, sc.Pessimistic.NPV)
			}
		}
	})

	t.Run("negative current rate keeps ordering", func(t *testing.T) {
		project := flatProject()
		current := -2.0
		project.CurrentRate = &current
		result := modeler.Model(ctx, project, series, 0, cfg.Modes[ModeBase])
		assert.Less(t, result.RateScenarios.Optimistic.Rate, result.RateScenarios.Pessimistic.Rate)
	})
}
