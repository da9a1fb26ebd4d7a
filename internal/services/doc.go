// Package services sits between the HTTP handlers and the feasibility engine.
//
// # Available Services
//
//	- AnalysisService: runs analyses, stores the latest result per project and
//	  mode in the result cache, serves lookups and invalidation
//	- HealthService: liveness, readiness (engine tables and cache reachability)
//	  and version information
//
// # Error Handling
//
// Services return typed errors from internal/errors that the HTTP layer turns
// into problem documents:
//
//	- *feasibility.InvalidProjectError for rejected project input
//	- AppError of type NOT_FOUND wrapping ErrAnalysisNotFound for lookups
//	- AppError of type CACHE wrapping ErrStoreUnavailable when the backend fails
//
// A failure to store a fresh result is logged and does not fail the analysis.
package services
