package config

import (
	"fmt"
	"os"

	"feasibility/internal/feasibility"

	"gopkg.in/yaml.v2"
)

// LoadEngineTables reads the scoring tables from a YAML file over the built-in
// defaults. An empty path returns the defaults. Mode entries replace the default
// entry for that mode as a whole; list tables replace the default list.
func LoadEngineTables(path string) (feasibility.Config, error) {
	cfg := feasibility.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return feasibility.Config{}, fmt.Errorf("failed to read engine tables: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return feasibility.Config{}, &feasibility.ConfigurationError{
			Field:  path,
			Reason: fmt.Sprintf("malformed yaml: %v", err),
		}
	}

	if err := cfg.Validate(); err != nil {
		return feasibility.Config{}, err
	}

	return cfg, nil
}
