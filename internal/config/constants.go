package config

import "time"

// Application constants
const (
	// Application Info
	AppName        = "Feasibility Engine"
	AppServiceName = "feasibility-engine"
	AppVendor      = "Feasibility"

	// EnvPrefix namespaces every environment variable, e.g. FEAS_SERVER_PORT
	EnvPrefix = "FEAS"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Timeouts
	DefaultAnalysisTimeout = 10 * time.Second
	DefaultRequestTimeout  = 30 * time.Second

	// Cache Settings
	DefaultCacheTTL     = 1 * time.Hour
	DefaultCacheCleanup = 5 * time.Minute

	// File Paths (relative to the working directory)
	DefaultLogFile     = "logs/app.log"
	DefaultReportsDir  = "reports"
	DefaultTablesFile  = "configs/engine.yaml"
	DefaultProjectsDir = "projects"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// API Endpoints
const (
	APIBasePath      = "/api"
	AnalysisEndpoint = "/api/analysis"
	ModesEndpoint    = "/api/modes"
	HealthEndpoint   = "/api/health"
	MetricsEndpoint  = "/metrics"
)

// ConfigFileLocations are searched in order for the application config file
var ConfigFileLocations = []string{
	"config.yaml",
	"configs/config.yaml",
	"../configs/config.yaml",
	"../../configs/config.yaml",
}
