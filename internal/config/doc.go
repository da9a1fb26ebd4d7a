// Package config provides centralized configuration management for the feasibility
// service. It loads settings from several sources, validates them, and reads the
// engine's scoring tables.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// A .env file in the working directory is loaded first when present.
//
// # Environment Variables
//
// All environment variables follow the pattern FEAS_* for namespacing:
//
//	FEAS_SERVER_PORT=8080
//	FEAS_CACHE_BACKEND=redis
//	FEAS_CACHE_REDIS_ADDR=localhost:6379
//	FEAS_ENGINE_TABLES_FILE=configs/engine.yaml
//	FEAS_TELEMETRY_TRACE_EXPORTER=stdout
//	FEAS_CONFIG_FILE=/etc/feasibility/config.yaml
//
// # Engine Tables
//
// LoadEngineTables reads mode multipliers, score and category weights, the maturity
// threshold table and solver bounds from YAML over the built-in defaults. The result
// is validated; inconsistent tables return *feasibility.ConfigurationError so the
// process refuses to start.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tables, err := config.LoadEngineTables(cfg.Engine.TablesFile)
package config
