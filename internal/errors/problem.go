package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"feasibility/internal/feasibility"

	"github.com/go-chi/render"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
)

// Analysis-specific error types
const (
	TypeInvalidProject      = "/errors/analysis/invalid-project"
	TypeAnalysisNotFound    = "/errors/analysis/not-found"
	TypeAnalysisFailed      = "/errors/analysis/failed"
	TypeCacheUnavailable    = "/errors/cache/unavailable"
	TypeEngineMisconfigured = "/errors/engine/misconfigured"
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Extension members are flattened into the top-level object
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON flattens extensions next to the standard members.
// Standard members win over an extension with the same key.
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{}, len(pd.Extensions)+5)
	for k, v := range pd.Extensions {
		data[k] = v
	}

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status
	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if pd.Extensions == nil {
		pd.Extensions = make(map[string]interface{})
	}
	pd.Extensions[key] = value
	return pd
}

// NewInvalidProjectProblem describes rejected project input.
// The offending field is exposed so clients can highlight it.
func NewInvalidProjectProblem(err *feasibility.InvalidProjectError, instance string) *ProblemDetails {
	problem := NewProblemDetails(
		http.StatusUnprocessableEntity,
		TypeInvalidProject,
		"Invalid Project",
		err.Error(),
		instance,
	).WithExtension("error_code", CodeInvalidProject).
		WithExtension("field", err.Field).
		WithExtension("reason", err.Reason)

	if err.Value != nil {
		problem.WithExtension("value", err.Value)
	}
	return problem
}

// NewAnalysisNotFoundProblem describes a lookup for an analysis that is not cached
func NewAnalysisNotFoundProblem(projectID, mode, instance string) *ProblemDetails {
	return NewProblemDetails(
		http.StatusNotFound,
		TypeAnalysisNotFound,
		"Analysis Not Found",
		"No analysis is stored for this project and mode. Submit the project to compute one.",
		instance,
	).WithExtension("error_code", CodeAnalysisNotFound).
		WithExtension("project_id", projectID).
		WithExtension("mode", mode)
}

// NewAnalysisTimeoutProblem describes an analysis that ran past its deadline
func NewAnalysisTimeoutProblem(instance string) *ProblemDetails {
	return NewProblemDetails(
		ErrAnalysisTimeout.StatusCode,
		TypeTimeout,
		"Analysis Timeout",
		ErrAnalysisTimeout.Message,
		instance,
	).WithExtension("error_code", ErrAnalysisTimeout.ErrorCode)
}

// NewPayloadTooLargeProblem describes a request body over the configured limit
func NewPayloadTooLargeProblem(limit int64, instance string) *ProblemDetails {
	return NewProblemDetails(
		ErrPayloadTooLarge.StatusCode,
		TypePayloadTooLarge,
		"Payload Too Large",
		fmt.Sprintf("%s: the limit is %d bytes", ErrPayloadTooLarge.Message, limit),
		instance,
	).WithExtension("error_code", ErrPayloadTooLarge.ErrorCode).
		WithExtension("limit_bytes", limit)
}

// NewCacheUnavailableProblem describes a result cache that could not be reached
func NewCacheUnavailableProblem(detail, instance string) *ProblemDetails {
	if detail == "" {
		detail = ErrCacheUnavailable.Message
	}
	return NewProblemDetails(
		ErrCacheUnavailable.StatusCode,
		TypeCacheUnavailable,
		"Cache Unavailable",
		detail,
		instance,
	).WithExtension("error_code", ErrCacheUnavailable.ErrorCode)
}
