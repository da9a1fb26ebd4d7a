package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"feasibility/internal/cache"
	apierrors "feasibility/internal/errors"
	"feasibility/internal/feasibility"
	"feasibility/internal/infrastructure"
	api "feasibility/pkg/contracts/api/v1"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"
)

// Analyzer runs the scoring pipeline. *feasibility.Engine satisfies it.
type Analyzer interface {
	RunAnalysis(ctx context.Context, project feasibility.Project, mode feasibility.Mode) (*feasibility.AnalysisResult, error)
	Config() feasibility.Config
}

// AnalysisServiceOptions carries the optional collaborators of AnalysisService
type AnalysisServiceOptions struct {
	KeyPrefix string
	Tracer    trace.Tracer
	Metrics   *infrastructure.BusinessMetrics
	Clock     func() time.Time
}

// AnalysisService runs analyses and keeps the latest result per project and mode
type AnalysisService struct {
	engine    Analyzer
	store     cache.Store
	keyPrefix string
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics
	now       func() time.Time
	logger    *slog.Logger
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(engine Analyzer, store cache.Store, opts AnalysisServiceOptions, logger *slog.Logger) *AnalysisService {
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(infrastructure.InstrumentationName)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &AnalysisService{
		engine:    engine,
		store:     store,
		keyPrefix: opts.KeyPrefix,
		tracer:    opts.Tracer,
		metrics:   opts.Metrics,
		now:       opts.Clock,
		logger:    infrastructure.WithComponent(logger, "analysis_service"),
	}
}

// RunAnalysis scores the project under mode and stores the result. A store
// failure is logged and does not fail the analysis.
func (s *AnalysisService) RunAnalysis(ctx context.Context, project feasibility.Project, mode feasibility.Mode) (*api.StoredAnalysis, error) {
	if mode == "" {
		mode = feasibility.ModeBase
	}

	ctx, span := s.tracer.Start(ctx, "analysis.run",
		trace.WithAttributes(
			attribute.String("project.id", project.ID),
			attribute.String("analysis.mode", string(mode)),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := s.engine.RunAnalysis(ctx, project, mode)
	infrastructure.RecordAnalysisMetrics(ctx, s.metrics, string(mode), recommendationOf(result), scoreOf(result), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Float64("analysis.overall_score", result.OverallScore),
		attribute.String("analysis.recommendation", string(result.Recommendation)),
	)

	fingerprint, err := Fingerprint(project, mode)
	if err != nil {
		return nil, apierrors.NewComputationError("failed to fingerprint project", err)
	}

	stored := &api.StoredAnalysis{
		Fingerprint: fingerprint,
		StoredAt:    s.now().UTC(),
		Result:      result,
	}

	if err := s.save(ctx, stored); err != nil {
		s.logger.WarnContext(ctx, "failed to store analysis",
			slog.String("project_id", project.ID),
			slog.String("mode", string(mode)),
			slog.String("error", err.Error()))
	}

	return stored, nil
}

// GetAnalysis returns the stored analysis for a project and mode
func (s *AnalysisService) GetAnalysis(ctx context.Context, projectID string, mode feasibility.Mode) (*api.StoredAnalysis, error) {
	if mode == "" {
		mode = feasibility.ModeBase
	}
	key := cache.Key(s.keyPrefix, projectID, string(mode))

	data, err := s.store.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		infrastructure.RecordCacheLookup(ctx, s.metrics, string(mode), false)
		return nil, notFound(projectID, mode)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "result cache lookup failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, apierrors.NewCacheError("result cache unavailable", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	var stored api.StoredAnalysis
	if err := json.Unmarshal(data, &stored); err != nil || stored.Result == nil {
		s.logger.WarnContext(ctx, "discarding undecodable analysis",
			slog.String("key", key))
		_ = s.store.Delete(ctx, key)
		infrastructure.RecordCacheLookup(ctx, s.metrics, string(mode), false)
		return nil, notFound(projectID, mode)
	}

	infrastructure.RecordCacheLookup(ctx, s.metrics, string(mode), true)
	return &stored, nil
}

// Invalidate drops the stored analyses of a project under every mode
func (s *AnalysisService) Invalidate(ctx context.Context, projectID string) error {
	keys := make([]string, 0, len(feasibility.AllModes))
	for _, m := range feasibility.AllModes {
		keys = append(keys, cache.Key(s.keyPrefix, projectID, string(m)))
	}

	if err := s.store.Delete(ctx, keys...); err != nil {
		return apierrors.NewCacheError("failed to invalidate analyses", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)).
			WithContext("project_id", projectID)
	}

	s.logger.InfoContext(ctx, "analyses invalidated", slog.String("project_id", projectID))
	return nil
}

// Modes lists the mode table in evaluation order
func (s *AnalysisService) Modes() []api.ModeInfo {
	cfg := s.engine.Config()
	modes := make([]api.ModeInfo, 0, len(feasibility.AllModes))
	for _, m := range feasibility.AllModes {
		mc := cfg.Modes[m]
		modes = append(modes, api.ModeInfo{
			Name:                m,
			GrowthHaircut:       mc.GrowthHaircut,
			RiskPremiumFactor:   mc.RiskPremiumFactor,
			ScenarioSpread:      mc.ScenarioSpread,
			ScenarioProbability: mc.ScenarioProbability,
		})
	}
	return modes
}

func (s *AnalysisService) save(ctx context.Context, stored *api.StoredAnalysis) error {
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	key := cache.Key(s.keyPrefix, stored.Result.ProjectID, string(stored.Result.Mode))
	return s.store.Set(ctx, key, data)
}

// Fingerprint hashes the project input and mode with BLAKE2b-256. Equal inputs
// give equal fingerprints, which the HTTP layer serves as the ETag.
func Fingerprint(project feasibility.Project, mode feasibility.Mode) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if err := json.NewEncoder(h).Encode(project); err != nil {
		return "", err
	}
	_, _ = h.Write([]byte(mode))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func notFound(projectID string, mode feasibility.Mode) error {
	return apierrors.NewAppError(apierrors.ErrTypeNotFound,
		fmt.Sprintf("no %s analysis stored for project %s", mode, projectID), ErrAnalysisNotFound).
		WithContext("project_id", projectID).
		WithContext("mode", string(mode))
}

func scoreOf(r *feasibility.AnalysisResult) float64 {
	if r == nil {
		return 0
	}
	return r.OverallScore
}

func recommendationOf(r *feasibility.AnalysisResult) string {
	if r == nil {
		return ""
	}
	return string(r.Recommendation)
}
