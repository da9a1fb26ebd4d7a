package feasibility

import (
	"errors"
	"fmt"
)

// Warning codes embedded in results
const (
	WarningNoBreakevenRate = "NO_BREAKEVEN_RATE"
	WarningIRRNotConverged = "IRR_NOT_CONVERGED"
	WarningExitNotFound    = "OPTIMAL_EXIT_NOT_FOUND"
	WarningROIUndefined    = "ANNUALIZED_ROI_UNDEFINED"
	WarningPaybackNeverMet = "PAYBACK_NEVER"
)

// ErrInvalidTransition is returned when the run state machine is driven out of order
var ErrInvalidTransition = errors.New("invalid run state transition")

// InvalidProjectError reports malformed or out-of-domain project input.
// It aborts the analysis without a partial result.
type InvalidProjectError struct {
	Field  string      `json:"field"`
	Reason string      `json:"reason"`
	Value  interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *InvalidProjectError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("invalid project: %s %s (got %v)", e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("invalid project: %s %s", e.Field, e.Reason)
}

func invalidProject(field, reason string, value interface{}) *InvalidProjectError {
	return &InvalidProjectError{Field: field, Reason: reason, Value: value}
}

// ConfigurationError reports a missing or inconsistent threshold or weight table.
// It is raised when the engine is constructed, never per call.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid engine configuration: %s %s", e.Field, e.Reason)
}

// NumericNonConvergenceWarning reports a numeric search that produced no answer.
// The affected field degrades to null and the run continues.
type NumericNonConvergenceWarning struct {
	Metric     string
	Code       string
	Iterations int
	Reason     string
}

// Error implements the error interface
func (w *NumericNonConvergenceWarning) Error() string {
	if w.Iterations > 0 {
		return fmt.Sprintf("%s did not converge after %d iterations: %s", w.Metric, w.Iterations, w.Reason)
	}
	return fmt.Sprintf("%s did not converge: %s", w.Metric, w.Reason)
}

// AsWarning converts the non-convergence into a result warning
func (w *NumericNonConvergenceWarning) AsWarning() Warning {
	return Warning{Code: w.Code, Metric: w.Metric, Message: w.Reason}
}

// IsInvalidProject reports whether err is or wraps an InvalidProjectError
func IsInvalidProject(err error) bool {
	var target *InvalidProjectError
	return errors.As(err, &target)
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
