// Package http implements the HTTP handlers of the feasibility service.
// Handlers stay thin: they decode and validate requests, call a service and
// hand every error to the shared apierrors.ErrorHandler, which renders an
// RFC 7807 problem document.
//
// # Routes
//
//	POST   /api/analysis               run an analysis, body api.AnalysisRequest
//	GET    /api/analysis/{projectID}   stored analysis, ?mode= defaults to base
//	DELETE /api/analysis/{projectID}   drop stored analyses for every mode
//	GET    /api/modes                  mode parameter table
//	GET    /api/health[/ready|/live]   health probes
//	GET    /api/version                build and version information
//
// Analysis responses carry the input fingerprint as a strong ETag; a GET with a
// matching If-None-Match answers 304 Not Modified.
package http
