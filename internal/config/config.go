// Package config loads go-planar-arm configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// ARM_* environment variables. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/teslashibe/go-planar-arm/pkg/arm"
	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
)

// Config holds the complete service configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Control ControlConfig `koanf:"control"`
	Solver  SolverConfig  `koanf:"solver"`
	Arm     ArmConfig     `koanf:"arm"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     string        `koanf:"cors_origins"`
	RequestLog      bool          `koanf:"request_log"`
	InitOnStart     bool          `koanf:"init_on_start"` // create the default arm at startup
}

// Addr returns host:port for listening.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ControlConfig holds manual joint control settings.
type ControlConfig struct {
	Policy string `koanf:"policy"` // reject or clamp
}

// SolverConfig holds solve defaults. Zero values defer to each algorithm's own.
type SolverConfig struct {
	Algorithm     string  `koanf:"algorithm"`
	MaxIterations int     `koanf:"max_iterations"`
	Tolerance     float64 `koanf:"tolerance"`
	Patience      int     `koanf:"patience"`
}

// ArmConfig describes the default arm created by GET /init.
type ArmConfig struct {
	Links  []float64     `koanf:"links"`
	Angles []float64     `koanf:"angles"`
	Limits []LimitConfig `koanf:"limits"`
}

// LimitConfig is one joint range in degrees. A missing bound is unbounded.
type LimitConfig struct {
	Min *float64 `koanf:"min"`
	Max *float64 `koanf:"max"`
}

// Limit converts to a kinematics limit.
func (l LimitConfig) Limit() kinematics.Limit {
	out := kinematics.Unconstrained()
	if l.Min != nil {
		out.Min = *l.Min
	}
	if l.Max != nil {
		out.Max = *l.Max
	}
	return out
}

// ArmSpec returns the configured default arm.
func (c *Config) ArmSpec() arm.Spec {
	limits := make([]kinematics.Limit, len(c.Arm.Limits))
	for i, l := range c.Arm.Limits {
		limits[i] = l.Limit()
	}
	return arm.Spec{
		Links:  append([]float64(nil), c.Arm.Links...),
		Angles: append([]float64(nil), c.Arm.Angles...),
		Limits: limits,
	}
}

// ControllerOptions returns controller settings derived from the config.
// Call Validate first.
func (c *Config) ControllerOptions() arm.Options {
	policy, _ := arm.ParsePolicy(c.Control.Policy)
	alg, _ := kinematics.ParseAlgorithm(c.Solver.Algorithm)
	return arm.Options{
		Policy:    policy,
		Algorithm: alg,
		Params: kinematics.Params{
			MaxIterations: c.Solver.MaxIterations,
			Tolerance:     c.Solver.Tolerance,
			Patience:      c.Solver.Patience,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	if _, err := arm.ParsePolicy(c.Control.Policy); err != nil {
		errs = append(errs, fmt.Errorf("control.policy: %w", err))
	}
	if _, err := kinematics.ParseAlgorithm(c.Solver.Algorithm); err != nil {
		errs = append(errs, fmt.Errorf("solver.algorithm: %w", err))
	}
	if c.Solver.MaxIterations < 0 {
		errs = append(errs, errors.New("solver.max_iterations must not be negative"))
	}
	if c.Solver.Tolerance < 0 || math.IsNaN(c.Solver.Tolerance) {
		errs = append(errs, errors.New("solver.tolerance must not be negative"))
	}
	if c.Solver.Patience < 0 {
		errs = append(errs, errors.New("solver.patience must not be negative"))
	}
	if _, err := c.ArmSpec().Build(); err != nil {
		errs = append(errs, fmt.Errorf("arm: %w", err))
	}

	return errors.Join(errs...)
}
