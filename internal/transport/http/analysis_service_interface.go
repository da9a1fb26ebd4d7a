package http

import (
	"context"

	"feasibility/internal/feasibility"
	api "feasibility/pkg/contracts/api/v1"
)

// AnalysisServiceInterface defines the analysis operations the handlers need
type AnalysisServiceInterface interface {
	RunAnalysis(ctx context.Context, project feasibility.Project, mode feasibility.Mode) (*api.StoredAnalysis, error)
	GetAnalysis(ctx context.Context, projectID string, mode feasibility.Mode) (*api.StoredAnalysis, error)
	Invalidate(ctx context.Context, projectID string) error
	Modes() []api.ModeInfo
}
