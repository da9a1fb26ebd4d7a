package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apierrors "feasibility/internal/errors"
	"feasibility/internal/feasibility"
	"feasibility/internal/middleware"
	"feasibility/internal/services"
	api "feasibility/pkg/contracts/api/v1"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// AnalysisHandler handles analysis HTTP requests
type AnalysisHandler struct {
	service      AnalysisServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisServiceInterface, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *AnalysisHandler {
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	return &AnalysisHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("handler", "analysis")),
		errorHandler: errorHandler,
	}
}

// RegisterRoutes registers the analysis routes
func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Route("/analysis", func(r chi.Router) {
		r.With(middleware.ContentTypeValidator("application/json")).Post("/", h.RunAnalysis)
		r.Get("/{projectID}", h.GetAnalysis)
		r.Delete("/{projectID}", h.DeleteAnalysis)
	})
	r.Get("/modes", h.ListModes)
}

// RunAnalysis handles POST /api/analysis
func (h *AnalysisHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.AnalysisRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	stored, err := h.service.RunAnalysis(ctx, req.Project, req.ModeOrDefault())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "analysis served",
		slog.String("project_id", stored.Result.ProjectID),
		slog.String("mode", string(stored.Result.Mode)),
		slog.String("recommendation", string(stored.Result.Recommendation)))

	w.Header().Set("ETag", etag(stored.Fingerprint))
	render.JSON(w, r, stored.Result)
}

// GetAnalysis handles GET /api/analysis/{projectID}?mode=
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	query := api.AnalysisQuery{
		ProjectID: chi.URLParam(r, "projectID"),
		Mode:      r.URL.Query().Get("mode"),
	}
	if err := h.validator.ValidateStruct(query); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	mode, err := feasibility.ParseMode(query.Mode)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidModeError(query.Mode))
		return
	}

	stored, err := h.service.GetAnalysis(r.Context(), query.ProjectID, mode)
	if err != nil {
		if errors.Is(err, services.ErrAnalysisNotFound) {
			err = apierrors.AnalysisNotFoundError(query.ProjectID, string(mode))
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	tag := etag(stored.Fingerprint)
	w.Header().Set("ETag", tag)
	if matchesETag(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	render.JSON(w, r, stored)
}

// DeleteAnalysis handles DELETE /api/analysis/{projectID}
func (h *AnalysisHandler) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if err := h.validator.ValidateVar("projectId", projectID, "required,project_id"); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if err := h.service.Invalidate(r.Context(), projectID); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListModes handles GET /api/modes
func (h *AnalysisHandler) ListModes(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.ModesResponse{Modes: h.service.Modes()})
}

func etag(fingerprint string) string {
	return `"` + fingerprint + `"`
}

// matchesETag reports whether an If-None-Match header names tag
func matchesETag(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}
