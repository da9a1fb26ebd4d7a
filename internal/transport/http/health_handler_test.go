package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feasibility/internal/cache"
	"feasibility/internal/feasibility"
	"feasibility/internal/services"
	"feasibility/internal/shared/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type downStore struct{ cache.Store }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func newHealthRouter(t *testing.T, store cache.Store) http.Handler {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	engine, err := feasibility.NewEngine(feasibility.DefaultConfig(), logger)
	require.NoError(t, err)

	h := NewHealthHandler(services.NewHealthService("1.2.0", "", engine, store, logger), logger)
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func TestHealthHandler_Endpoints(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute, 0)
	defer func() { _ = store.Close() }()
	router := newHealthRouter(t, store)

	tests := []struct {
		path       string
		wantStatus int
		wantField  string
		wantValue  interface{}
	}{
		{"/api/health", http.StatusOK, "status", "ok"},
		{"/api/health/ready", http.StatusOK, "status", "ready"},
		{"/api/health/live", http.StatusOK, "status", "alive"},
		{"/api/version", http.StatusOK, "version", "1.2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantValue, body[tt.wantField])
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	router := newHealthRouter(t, downStore{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not_ready")
	assert.Contains(t, w.Body.String(), "connection refused")
}
