package feasibility

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAnalysisFlatProject(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.RunAnalysis(context.Background(), flatProject(), ModeBase)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "flat-30k", result.ProjectID)
	assert.Equal(t, ModeBase, result.Mode)
	assert.Equal(t, RunStatusComplete, result.Status)
	assert.Equal(t, fixedTime, result.AssessmentDate)

	assert.GreaterOrEqual(t, result.OverallScore, 60.0)
	assert.LessOrEqual(t, result.OverallScore, 80.0)
	assert.InDelta(t, 72.49, result.OverallScore, 0.05)
	assert.Equal(t, Recommended, result.Recommendation)

	assert.Greater(t, result.TimeValue.NPV, 0.0)
	require.NotNil(t, result.TimeValue.PaybackPeriod)
	assert.InDelta(t, 3.33, *result.TimeValue.PaybackPeriod, 0.01)
	assert.Less(t, result.TimeValue.RiskAdjustedNPV, result.TimeValue.NPV)

	assert.InDelta(t, 16, result.Risk.OverallRiskScore, 1e-9)
	assert.Equal(t, StageGrowth, result.Lifecycle.MarketMaturityStage)
	assert.InDelta(t, 8.96, result.InterestRate.RequiredReturn, 1e-9)
	assert.InDelta(t, 80, result.ConfidenceLevel, 1e-9)
	assert.Empty(t, result.Warnings)
	assert.NotEmpty(t, result.KeyStrengths)
}

func TestRunAnalysisDecliningProject(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.RunAnalysis(context.Background(), decliningProject(), ModeBase)
	require.NoError(t, err)

	assert.Equal(t, NotRecommended, result.Recommendation)
	assert.Nil(t, result.TimeValue.PaybackPeriod)
	assert.Equal(t, "never", result.TimeValue.PaybackLabel())
	assert.Less(t, result.TimeValue.NPV, 0.0)
	assert.Equal(t, StageDeclining, result.Lifecycle.MarketMaturityStage)
	assert.InDelta(t, 33.92, result.OverallScore, 0.05)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningPaybackNeverMet, result.Warnings[0].Code)
}

func TestRunAnalysisZeroRiskFactors(t *testing.T) {
	engine := newTestEngine(t)
	project := flatProject()
	project.RiskFactors = nil

	result, err := engine.RunAnalysis(context.Background(), project, ModeBase)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Risk.OverallRiskScore)
	assert.LessOrEqual(t, result.ConfidenceLevel, 70.0)
	assert.Contains(t, result.KeyWeaknesses, "No risk factors were assessed")
}

func TestRunAnalysisAlternativeScenarios(t *testing.T) {
	engine := newTestEngine(t)

	for _, mode := range AllModes {
		t.Run(string(mode), func(t *testing.T) {
			result, err := engine.RunAnalysis(context.Background(), flatProject(), mode)
			require.NoError(t, err)
			require.Len(t, result.AlternativeScenarios, 3)

			var total float64
			for i, sc := range result.AlternativeScenarios {
				assert.Equal(t, AllModes[i], sc.Scenario)
				total += sc.Probability
			}
			assert.InDelta(t, 100, total, 0.01)

			own := result.AlternativeScenarios[indexOfMode(mode)]
			assert.Equal(t, result.OverallScore, own.OverallScore)
			assert.Equal(t, result.Recommendation, own.Outcome)
		})
	}

	result, err := engine.RunAnalysis(context.Background(), flatProject(), ModeBase)
	require.NoError(t, err)
	sc := result.AlternativeScenarios
	assert.Equal(t, ProceedWithCaution, sc[0].Outcome)
	assert.Equal(t, Recommended, sc[1].Outcome)
	assert.Equal(t, HighlyRecommended, sc[2].Outcome)
	assert.Less(t, sc[0].NPV, sc[1].NPV)
	assert.Less(t, sc[1].NPV, sc[2].NPV)
	assert.Equal(t, []float64{25, 50, 25}, []float64{sc[0].Probability, sc[1].Probability, sc[2].Probability})
}

func indexOfMode(m Mode) int {
	for i, candidate := range AllModes {
		if candidate == m {
			return i
		}
	}
	return -1
}

func TestRunAnalysisDeterministic(t *testing.T) {
	engine := newTestEngine(t)
	project := decliningProject()
	exposure := 75000.0
	project.RiskFactors = append(project.RiskFactors,
		RiskFactor{Category: RiskRegulatory, Probability: 0.3, Impact: 0.9, FinancialExposure: &exposure},
		RiskFactor{Category: RiskTechnology, Probability: 0.8, Impact: 0.8},
	)

	first, err := engine.RunAnalysis(context.Background(), project, ModeConservative)
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := engine.RunAnalysis(context.Background(), project, ModeConservative)
		require.NoError(t, err)
		againJSON, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(againJSON))
	}
}

func TestRunAnalysisConcurrentCallers(t *testing.T) {
	engine := newTestEngine(t)
	expected, err := engine.RunAnalysis(context.Background(), flatProject(), ModeAggressive)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*AnalysisResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := engine.RunAnalysis(context.Background(), flatProject(), ModeAggressive)
			if err == nil {
				results[i] = r
			}
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, expected, r)
	}
}

func TestRunAnalysisInvalidInput(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("invalid project", func(t *testing.T) {
		project := flatProject()
		project.InitialInvestment = 0
		result, err := engine.RunAnalysis(context.Background(), project, ModeBase)
		assert.Nil(t, result)
		require.Error(t, err)
		assert.True(t, IsInvalidProject(err))
	})

	t.Run("invalid lifespan", func(t *testing.T) {
		project := flatProject()
		project.ExpectedLifespanYears = -1
		result, err := engine.RunAnalysis(context.Background(), project, ModeBase)
		assert.Nil(t, result)
		assert.True(t, IsInvalidProject(err))
	})

	t.Run("unknown mode", func(t *testing.T) {
		result, err := engine.RunAnalysis(context.Background(), flatProject(), Mode("turbo"))
		assert.Nil(t, result)
		assert.True(t, IsInvalidProject(err))
	})

	t.Run("non-finite inputs", func(t *testing.T) {
		current := -80.0
		tests := []struct {
			name   string
			mutate func(p *Project)
		}{
			{"nan probability", func(p *Project) { p.RiskFactors[0].Probability = math.NaN() }},
			{"nan discount rate", func(p *Project) { p.DiscountRate = math.NaN() }},
			{"overflowing inflows", func(p *Project) { p.NetCashFlows = []float64{1e308, 1e308, 0, 0, 0} }},
			{"conservative rate scenario at -100", func(p *Project) { p.CurrentRate = &current }},
			{"present value overflow", func(p *Project) {
				p.NetCashFlows = []float64{1e300, 1e300, 1e300, 1e300, 1e300}
				p.DiscountRate = -99.9999
				p.CurrentRate = floatPtr(5)
			}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				project := flatProject()
				tt.mutate(&project)
				result, err := engine.RunAnalysis(context.Background(), project, ModeBase)
				assert.Nil(t, result)
				require.Error(t, err)
				assert.True(t, IsInvalidProject(err), err.Error())
			})
		}
	})

	t.Run("empty mode selects base", func(t *testing.T) {
		result, err := engine.RunAnalysis(context.Background(), flatProject(), "")
		require.NoError(t, err)
		assert.Equal(t, ModeBase, result.Mode)
	})
}

func TestRunAnalysisDegradesOnNonConvergence(t *testing.T) {
	engine := newTestEngine(t)
	project := Project{
		ID:                    "sunk",
		InitialInvestment:     100,
		NetCashFlows:          []float64{-10, -10},
		ExpectedLifespanYears: 2,
		DiscountRate:          10,
	}

	result, err := engine.RunAnalysis(context.Background(), project, ModeBase)
	require.NoError(t, err)

	assert.Equal(t, RunStatusComplete, result.Status)
	assert.Nil(t, result.TimeValue.IRRApprox)
	assert.Nil(t, result.TimeValue.AnnualizedROI)
	assert.Nil(t, result.Lifecycle.OptimalExitTime)
	assert.Equal(t, NotRecommended, result.Recommendation)
	// 100 - 10 sparse - 15 irr - 5 exit - 5 roi - 10 qualitative
	assert.InDelta(t, 55, result.ConfidenceLevel, 1e-9)

	codes := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	assert.ElementsMatch(t, []string{
		WarningNoBreakevenRate,
		WarningPaybackNeverMet,
		WarningROIUndefined,
		WarningExitNotFound,
	}, codes)
}

func TestRunAnalysisContext(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result, err := engine.RunAnalysis(ctx, flatProject(), ModeBase)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("expired deadline", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		result, err := engine.RunAnalysis(ctx, flatProject(), ModeBase)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestRunAnalysisMaturityHint(t *testing.T) {
	engine := newTestEngine(t)
	project := flatProject()
	project.MarketMaturityHint = StageDeclining

	result, err := engine.RunAnalysis(context.Background(), project, ModeBase)
	require.NoError(t, err)
	assert.Equal(t, StageDeclining, result.Lifecycle.MarketMaturityStage)
	assert.Contains(t, result.KeyWeaknesses, "Market is declining")
}
