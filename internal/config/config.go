package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Engine    EngineConfig    `yaml:"engine" envconfig:"ENGINE"`
	Cache     CacheConfig     `yaml:"cache" envconfig:"CACHE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// EngineConfig points at the scoring tables and bounds each analysis
type EngineConfig struct {
	TablesFile      string        `yaml:"tables_file" envconfig:"TABLES_FILE"`
	AnalysisTimeout time.Duration `yaml:"analysis_timeout" envconfig:"ANALYSIS_TIMEOUT" default:"10s"`
}

// CacheConfig selects and tunes the result cache backend
type CacheConfig struct {
	Backend         string        `yaml:"backend" envconfig:"BACKEND" default:"memory"`
	TTL             time.Duration `yaml:"ttl" envconfig:"TTL" default:"1h"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" envconfig:"CLEANUP_INTERVAL" default:"5m"`
	KeyPrefix       string        `yaml:"key_prefix" envconfig:"KEY_PREFIX" default:"feasibility"`
	RedisAddr       string        `yaml:"redis_addr" envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword   string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `yaml:"redis_db" envconfig:"REDIS_DB" default:"0"`
}

// TelemetryConfig controls tracing and metrics
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"feasibility-engine"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED" default:"true"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
}

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Load loads configuration from an optional .env file, environment variables and
// an optional config file. Environment variables take precedence over the file.
func Load() (*Config, error) {
	// a missing .env is not an error
	_ = godotenv.Load()

	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config. A value set in the file wins over
// a default, and an explicitly set environment variable wins over the file.
func mergeConfigs(fileConfig, envConfig Config) Config {
	pick := func(key string, fileSet bool, apply func()) {
		if !fileSet {
			return
		}
		if _, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
			return
		}
		apply()
	}

	f, e := fileConfig, &envConfig

	// Server config
	pick("SERVER_PORT", f.Server.Port != 0, func() { e.Server.Port = f.Server.Port })
	pick("SERVER_READ_TIMEOUT", f.Server.ReadTimeout != 0, func() { e.Server.ReadTimeout = f.Server.ReadTimeout })
	pick("SERVER_WRITE_TIMEOUT", f.Server.WriteTimeout != 0, func() { e.Server.WriteTimeout = f.Server.WriteTimeout })
	pick("SERVER_IDLE_TIMEOUT", f.Server.IdleTimeout != 0, func() { e.Server.IdleTimeout = f.Server.IdleTimeout })
	pick("SERVER_SHUTDOWN_TIMEOUT", f.Server.ShutdownTimeout != 0, func() { e.Server.ShutdownTimeout = f.Server.ShutdownTimeout })
	pick("SERVER_REQUEST_TIMEOUT", f.Server.RequestTimeout != 0, func() { e.Server.RequestTimeout = f.Server.RequestTimeout })
	pick("SERVER_MAX_BODY_BYTES", f.Server.MaxBodyBytes != 0, func() { e.Server.MaxBodyBytes = f.Server.MaxBodyBytes })

	// Security config
	pick("SECURITY_ALLOWED_ORIGINS", len(f.Security.AllowedOrigins) > 0, func() { e.Security.AllowedOrigins = f.Security.AllowedOrigins })
	pick("SECURITY_RATE_LIMIT_RPS", f.Security.RateLimit.RPS != 0, func() { e.Security.RateLimit.RPS = f.Security.RateLimit.RPS })
	pick("SECURITY_RATE_LIMIT_BURST", f.Security.RateLimit.Burst != 0, func() { e.Security.RateLimit.Burst = f.Security.RateLimit.Burst })

	// Logging config
	pick("LOGGING_LEVEL", f.Logging.Level != "", func() { e.Logging.Level = f.Logging.Level })
	pick("LOGGING_OUTPUT", f.Logging.Output != "", func() { e.Logging.Output = f.Logging.Output })
	pick("LOGGING_FILE_PATH", f.Logging.FilePath != "", func() { e.Logging.FilePath = f.Logging.FilePath })

	// Engine config
	pick("ENGINE_TABLES_FILE", f.Engine.TablesFile != "", func() { e.Engine.TablesFile = f.Engine.TablesFile })
	pick("ENGINE_ANALYSIS_TIMEOUT", f.Engine.AnalysisTimeout != 0, func() { e.Engine.AnalysisTimeout = f.Engine.AnalysisTimeout })

	// Cache config
	pick("CACHE_BACKEND", f.Cache.Backend != "", func() { e.Cache.Backend = f.Cache.Backend })
	pick("CACHE_TTL", f.Cache.TTL != 0, func() { e.Cache.TTL = f.Cache.TTL })
	pick("CACHE_KEY_PREFIX", f.Cache.KeyPrefix != "", func() { e.Cache.KeyPrefix = f.Cache.KeyPrefix })
	pick("CACHE_REDIS_ADDR", f.Cache.RedisAddr != "", func() { e.Cache.RedisAddr = f.Cache.RedisAddr })
	pick("CACHE_REDIS_DB", f.Cache.RedisDB != 0, func() { e.Cache.RedisDB = f.Cache.RedisDB })

	// Telemetry config
	pick("TELEMETRY_SERVICE_NAME", f.Telemetry.ServiceName != "", func() { e.Telemetry.ServiceName = f.Telemetry.ServiceName })
	pick("TELEMETRY_ENVIRONMENT", f.Telemetry.Environment != "", func() { e.Telemetry.Environment = f.Telemetry.Environment })
	pick("TELEMETRY_TRACE_EXPORTER", f.Telemetry.TraceExporter != "", func() { e.Telemetry.TraceExporter = f.Telemetry.TraceExporter })

	return envConfig
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Engine.AnalysisTimeout <= 0 {
		return fmt.Errorf("engine analysis timeout must be positive")
	}

	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown cache backend: %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}

	switch c.Telemetry.TraceExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("unknown trace exporter: %q", c.Telemetry.TraceExporter)
	}

	// Logs are always JSON
	c.Logging.Format = "json"

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
		c.Logging.Output = strings.ToLower(c.Logging.Output)
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}
	for _, location := range ConfigFileLocations {
		if FileExists(location) {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Engine: EngineConfig{
			AnalysisTimeout: DefaultAnalysisTimeout,
		},
		Cache: CacheConfig{
			Backend:         CacheBackendMemory,
			TTL:             DefaultCacheTTL,
			CleanupInterval: DefaultCacheCleanup,
			KeyPrefix:       "feasibility",
			RedisAddr:       "localhost:6379",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppServiceName,
			Environment:    "development",
			TracingEnabled: true,
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
	}
}
