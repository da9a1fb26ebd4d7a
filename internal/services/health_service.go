package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"feasibility/internal/cache"
	"feasibility/internal/feasibility"
	"feasibility/pkg/contracts"
)

// readinessProbeTimeout bounds the cache ping of a readiness check
const readinessProbeTimeout = 2 * time.Second

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	engine    Analyzer
	store     cache.Store
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, engine Analyzer, store cache.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = contracts.Version
	}

	logger.Info("health service initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		engine:    engine,
		store:     store,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return status
}

// ReadinessCheck reports whether the engine tables are sound and the result
// cache answers
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["engine"] = hs.checkEngineHealth()
	status.Services["cache"] = hs.checkCacheHealth(ctx)

	for name, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "dependency not ready",
				slog.String("service", name),
				slog.String("message", sh.Message))
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":         hs.version,
		"api_version":     contracts.APIVersion,
		"result_format":   contracts.ResultFormatVersion,
		"go_version":      runtime.Version(),
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
		"uptime":          time.Since(hs.startTime).Seconds(),
		"start_time":      hs.startTime.Format(time.RFC3339),
		"current_time":    time.Now().Format(time.RFC3339),
		"modes_supported": len(feasibility.AllModes),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}

	return result
}

// checkEngineHealth validates the loaded scoring tables
func (hs *HealthService) checkEngineHealth() ServiceHealth {
	if hs.engine == nil {
		return ServiceHealth{Status: "not_ready", Message: "engine not initialized"}
	}
	if err := hs.engine.Config().Validate(); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Engine configuration invalid: %v", err),
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: "Engine tables are valid",
		Uptime:  time.Since(hs.startTime).String(),
	}
}

// checkCacheHealth pings the result cache
func (hs *HealthService) checkCacheHealth(ctx context.Context) ServiceHealth {
	if hs.store == nil {
		return ServiceHealth{Status: "not_ready", Message: "result cache not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, readinessProbeTimeout)
	defer cancel()

	if err := hs.store.Ping(ctx); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Result cache unreachable: %v", err),
		}
	}
	return ServiceHealth{Status: "ready", Message: "Result cache is reachable"}
}
