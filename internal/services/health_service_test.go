package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"feasibility/internal/cache"
	"feasibility/internal/feasibility"
	"feasibility/internal/shared/testutil"
	"feasibility/pkg/contracts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthService(t *testing.T, store cache.Store) *HealthService {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	engine, err := feasibility.NewEngine(feasibility.DefaultConfig(), logger)
	require.NoError(t, err)
	return NewHealthService("", "2025-03-01T12:00:00Z", engine, store, logger)
}

func TestHealthService_HealthCheck(t *testing.T) {
	hs := newHealthService(t, cache.NewMemoryStore(time.Minute, 0))

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, contracts.Version, status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		store      cache.Store
		wantStatus string
		wantCache  string
	}{
		{"memory cache", cache.NewMemoryStore(time.Minute, 0), "ready", "ready"},
		{"unreachable cache", failingStore{err: errors.New("dial tcp: refused")}, "not_ready", "not_ready"},
		{"no cache", nil, "not_ready", "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := newHealthService(t, tt.store)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)

			engine, ok := status.Services["engine"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, "ready", engine.Status)

			cacheHealth, ok := status.Services["cache"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, tt.wantCache, cacheHealth.Status)
		})
	}
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	hs := newHealthService(t, cache.NewMemoryStore(time.Minute, 0))

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	v := hs.Version()
	assert.Equal(t, contracts.Version, v["version"])
	assert.Equal(t, contracts.APIVersion, v["api_version"])
	assert.Equal(t, "2025-03-01T12:00:00Z", v["build_time"])
	assert.Equal(t, 3, v["modes_supported"])
}
