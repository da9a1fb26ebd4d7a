package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"feasibility/internal/cache"
	apierrors "feasibility/internal/errors"
	"feasibility/internal/feasibility"
	"feasibility/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// failingStore fails every operation with err
type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Set(context.Context, string, []byte) error { return f.err }
func (f failingStore) Delete(context.Context, ...string) error { return f.err }
func (f failingStore) Ping(context.Context) error { return f.err }
func (f failingStore) Close() error { return nil }

func newTestService(t *testing.T, store cache.Store) (*AnalysisService, *testutil.BufferedSlogHandler) {
	t.Helper()

	logger, logs := testutil.NewTestLogger(t)
	engine, err := feasibility.NewEngine(feasibility.DefaultConfig(), logger,
		feasibility.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)

	if store == nil {
		store = cache.NewMemoryStore(time.Hour, 0)
		t.Cleanup(func() { _ = store.Close() })
	}

	svc := NewAnalysisService(engine, store, AnalysisServiceOptions{
		KeyPrefix: "test",
		Clock:     func() time.Time { return fixedNow },
	}, logger)
	return svc, logs
}

func TestAnalysisService_RunAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	stored, err := svc.RunAnalysis(ctx, testutil.FlatProject(), feasibility.ModeBase)
	require.NoError(t, err)
	require.NotNil(t, stored.Result)

	assert.Equal(t, fixedNow, stored.StoredAt)
	assert.Len(t, stored.Fingerprint, 64)
	assert.Equal(t, "flat-30k", stored.Result.ProjectID)
	assert.Equal(t, feasibility.Recommended, stored.Result.Recommendation)
	assert.InDelta(t, 72.49, stored.Result.OverallScore, 0.01)

	got, err := svc.GetAnalysis(ctx, "flat-30k", feasibility.ModeBase)
	require.NoError(t, err)
	assert.Equal(t, stored.Fingerprint, got.Fingerprint)
	assert.Equal(t, stored.Result.OverallScore, got.Result.OverallScore)
	assert.Equal(t, stored.Result.Recommendation, got.Result.Recommendation)
	assert.True(t, got.StoredAt.Equal(fixedNow))

	_, err = svc.GetAnalysis(ctx, "flat-30k", feasibility.ModeConservative)
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
}

func TestAnalysisService_EmptyModeMeansBase(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	stored, err := svc.RunAnalysis(ctx, testutil.FlatProject(), "")
	require.NoError(t, err)
	assert.Equal(t, feasibility.ModeBase, stored.Result.Mode)

	_, err = svc.GetAnalysis(ctx, "flat-30k", "")
	assert.NoError(t, err)
}

func TestAnalysisService_InvalidProject(t *testing.T) {
	svc, _ := newTestService(t, nil)

	project := testutil.FlatProject()
	project.InitialInvestment = 0

	_, err := svc.RunAnalysis(context.Background(), project, feasibility.ModeBase)
	require.Error(t, err)
	assert.True(t, feasibility.IsInvalidProject(err))

	_, err = svc.GetAnalysis(context.Background(), project.ID, feasibility.ModeBase)
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
}

func TestAnalysisService_NotFoundCarriesContext(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.GetAnalysis(context.Background(), "ghost", feasibility.ModeAggressive)
	require.Error(t, err)

	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeNotFound, appErr.Type)
	assert.Equal(t, "ghost", appErr.Context["project_id"])
	assert.Equal(t, "aggressive", appErr.Context["mode"])
}

func TestAnalysisService_Invalidate(t *testing.T) {
	ctx := context.Background()
	svc, logs := newTestService(t, nil)

	for _, m := range feasibility.AllModes {
		_, err := svc.RunAnalysis(ctx, testutil.FlatProject(), m)
		require.NoError(t, err)
	}
	_, err := svc.RunAnalysis(ctx, testutil.ProjectWithID("other"), feasibility.ModeBase)
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(ctx, "flat-30k"))
	testutil.AssertLogAttr(t, logs, "project_id", "flat-30k")

	for _, m := range feasibility.AllModes {
		_, err := svc.GetAnalysis(ctx, "flat-30k", m)
		assert.ErrorIs(t, err, ErrAnalysisNotFound, "mode %s", m)
	}
	_, err = svc.GetAnalysis(ctx, "other", feasibility.ModeBase)
	assert.NoError(t, err)

	assert.NoError(t, svc.Invalidate(ctx, "never-stored"))
}

func TestAnalysisService_StoreFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	svc, logs := newTestService(t, failingStore{err: boom})

	stored, err := svc.RunAnalysis(ctx, testutil.FlatProject(), feasibility.ModeBase)
	require.NoError(t, err, "store failures must not fail the analysis")
	assert.NotNil(t, stored.Result)
	assert.True(t, logs.ContainsMessage("failed to store analysis"))

	_, err = svc.GetAnalysis(ctx, "flat-30k", feasibility.ModeBase)
	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeCache))
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = svc.Invalidate(ctx, "flat-30k")
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeCache))
}

func TestAnalysisService_CorruptEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore(time.Hour, 0)
	defer func() { _ = store.Close() }()
	svc, logs := newTestService(t, store)

	key := cache.Key("test", "flat-30k", "base")
	require.NoError(t, store.Set(ctx, key, []byte("{not json")))

	_, err := svc.GetAnalysis(ctx, "flat-30k", feasibility.ModeBase)
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
	assert.True(t, logs.ContainsMessage("discarding undecodable analysis"))

	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestAnalysisService_Modes(t *testing.T) {
	svc, _ := newTestService(t, nil)

	modes := svc.Modes()
	require.Len(t, modes, 3)

	names := []feasibility.Mode{modes[0].Name, modes[1].Name, modes[2].Name}
	assert.Equal(t, feasibility.AllModes, names)

	var total float64
	for _, m := range modes {
		total += m.ScenarioProbability
	}
	assert.InDelta(t, 100.0, total, 1e-9)
	assert.Equal(t, 1.0, modes[1].GrowthHaircut)
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(testutil.FlatProject(), feasibility.ModeBase)
	require.NoError(t, err)
	b, err := Fingerprint(testutil.FlatProject(), feasibility.ModeBase)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Fingerprint(testutil.FlatProject(), feasibility.ModeAggressive)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	changed := testutil.FlatProject()
	changed.DiscountRate = 9
	d, err := Fingerprint(changed, feasibility.ModeBase)
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}
