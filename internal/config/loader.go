package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ARM_"

// defaults is loaded before any file or environment layer.
const defaults = `
server:
  host: ""
  port: 8080
  shutdown_timeout: 10s
  cors_origins: "*"
  request_log: false
  init_on_start: false
log:
  level: info
  format: ""
control:
  policy: reject
solver:
  algorithm: jacobian_pseudoinverse
  max_iterations: 0
  tolerance: 0
  patience: 0
arm:
  links: [0, 4, 3, 2, 1]
  angles: [45, -90, 45, 20, 0]
  limits:
    - {min: 0, max: 180}
    - {min: -120, max: 120}
    - {min: -120, max: 120}
    - {min: -120, max: 120}
    - {min: 0, max: 0}
`

// Load returns the default configuration with environment overrides.
func Load() (*Config, error) {
	return LoadWithFile("")
}

// LoadWithFile layers defaults, the YAML file at path (skipped when path is
// empty) and ARM_* environment variables, then validates the result.
//
// Environment variables split on the first underscore after the prefix:
//
//	ARM_SERVER_PORT           -> server.port
//	ARM_SOLVER_MAX_ITERATIONS -> solver.max_iterations
func LoadWithFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider([]byte(defaults)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}
