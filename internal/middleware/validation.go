package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	apierrors "feasibility/internal/errors"
	"feasibility/internal/feasibility"

	"github.com/go-playground/validator/v10"
)

// Input size limits enforced before a project reaches the engine
const (
	MaxProjectIDLength = 128
	MaxSeriesLength    = 600
	MaxRiskFactors     = 100
)

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Validator checks request DTOs against their struct tags.
// Domain rules on project values stay with the engine; this layer rejects
// malformed shapes and unknown enumerations.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a validator with the analysis-specific tags registered
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New()

	_ = v.RegisterValidation("analysis_mode", isAnalysisMode)
	_ = v.RegisterValidation("risk_category", isRiskCategory)
	_ = v.RegisterValidation("maturity_stage", isMaturityStage)
	_ = v.RegisterValidation("project_id", isProjectID)
	v.RegisterStructValidation(validateProjectShape, feasibility.Project{})

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validate: v,
		logger:   logger.With(slog.String("component", "validator")),
	}
}

// ValidateStruct validates a struct and returns an *apierrors.APIError listing
// every failed field
func (m *Validator) ValidateStruct(v interface{}) error {
	err := m.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// ValidateVar validates a single value against a tag expression
func (m *Validator) ValidateVar(field string, value interface{}, tag string) error {
	if err := m.validate.Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return apierrors.ErrValidation(field, formatValidationErrorFor(field, fieldErrs[0]))
		}
		return apierrors.ErrValidation(field, err.Error())
	}
	return nil
}

// ContentTypeValidator ensures requests with a body declare an allowed content type
func ContentTypeValidator(contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodDelete || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			apierrors.WriteError(w, apierrors.NewWithDetails(
				http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE",
				"Unsupported content type",
				map[string]interface{}{
					"content_type": contentType,
					"allowed":      contentTypes,
				},
			))
		})
	}
}

// fieldPath strips the top-level struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatValidationError(fe validator.FieldError) string {
	return formatValidationErrorFor(fe.Field(), fe)
}

// formatValidationErrorFor formats validation error messages
func formatValidationErrorFor(field string, fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "analysis_mode":
		return fmt.Sprintf("%s must be one of: conservative, base, aggressive", field)
	case "risk_category":
		return fmt.Sprintf("%s must be a known risk category", field)
	case "maturity_stage":
		return fmt.Sprintf("%s must be one of: emerging, growth, mature, declining", field)
	case "project_id":
		return fmt.Sprintf("%s must be 1-%d letters, digits, dots, dashes or underscores", field, MaxProjectIDLength)
	case "series_length":
		return fmt.Sprintf("%s must have at most %d entries", field, MaxSeriesLength)
	case "factor_count":
		return fmt.Sprintf("%s must have at most %d entries", field, MaxRiskFactors)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Custom validators

func isAnalysisMode(fl validator.FieldLevel) bool {
	return feasibility.Mode(fl.Field().String()).IsValid()
}

func isRiskCategory(fl validator.FieldLevel) bool {
	return feasibility.RiskCategory(fl.Field().String()).IsValid()
}

func isMaturityStage(fl validator.FieldLevel) bool {
	return feasibility.MaturityStage(fl.Field().String()).IsValid()
}

func isProjectID(fl validator.FieldLevel) bool {
	return validProjectID(fl.Field().String())
}

func validProjectID(id string) bool {
	return len(id) <= MaxProjectIDLength && projectIDPattern.MatchString(id)
}

// validateProjectShape rejects project payloads the engine should never see.
// An empty ID is left to the engine, which reports it as an invalid project.
func validateProjectShape(sl validator.StructLevel) {
	p := sl.Current().Interface().(feasibility.Project)

	if p.ID != "" && !validProjectID(p.ID) {
		sl.ReportError(p.ID, "id", "ID", "project_id", "")
	}
	if len(p.NetCashFlows) > MaxSeriesLength {
		sl.ReportError(p.NetCashFlows, "netCashFlows", "NetCashFlows", "series_length", "")
	}
	if len(p.RevenueSeries) > MaxSeriesLength {
		sl.ReportError(p.RevenueSeries, "revenueSeries", "RevenueSeries", "series_length", "")
	}
	if len(p.RiskFactors) > MaxRiskFactors {
		sl.ReportError(p.RiskFactors, "riskFactors", "RiskFactors", "factor_count", "")
	}
	for i, f := range p.RiskFactors {
		if !f.Category.IsValid() {
			name := fmt.Sprintf("riskFactors[%d].category", i)
			sl.ReportError(f.Category, name, name, "risk_category", "")
		}
	}
	if p.MarketMaturityHint != "" && !p.MarketMaturityHint.IsValid() {
		sl.ReportError(p.MarketMaturityHint, "marketMaturityHint", "MarketMaturityHint", "maturity_stage", "")
	}
}
