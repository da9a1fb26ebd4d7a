// Package api contains the HTTP contract of the feasibility service.
// Version v1 is the current stable API version.
package api

import (
	"feasibility/internal/feasibility"
)

// AnalysisRequest submits a project for scoring under one mode
type AnalysisRequest struct {
	Project feasibility.Project `json:"project"`
	Mode    string              `json:"mode,omitempty" validate:"omitempty,analysis_mode"`
}

// ModeOrDefault returns the requested mode, base when omitted
func (r AnalysisRequest) ModeOrDefault() feasibility.Mode {
	if r.Mode == "" {
		return feasibility.ModeBase
	}
	return feasibility.Mode(r.Mode)
}

// AnalysisQuery addresses a stored analysis by path and query parameters.
// Mode is parsed by the handler.
type AnalysisQuery struct {
	ProjectID string `json:"projectId" validate:"required,project_id"`
	Mode      string `json:"mode,omitempty"`
}
