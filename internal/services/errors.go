package services

import "errors"

// Analysis service errors
var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrCorruptEntry     = errors.New("stored analysis could not be decoded")
	ErrStoreUnavailable = errors.New("result store unavailable")
)
