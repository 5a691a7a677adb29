package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-planar-arm/pkg/arm"
	"github.com/teslashibe/go-planar-arm/pkg/kinematics"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "reject", cfg.Control.Policy)
	assert.Equal(t, arm.DefaultSpec(), cfg.ArmSpec())

	opts := cfg.ControllerOptions()
	assert.Equal(t, arm.PolicyReject, opts.Policy)
	assert.Equal(t, kinematics.AlgorithmJacobianPseudoInverse, opts.Algorithm)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9191
control:
  policy: clamp
solver:
  algorithm: fabrik
  tolerance: 0.001
arm:
  links: [3, 2, 1]
  angles: [10, 0, 0]
  limits:
    - {}
    - {min: -90, max: 90}
    - {min: 0}
`)
	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, arm.PolicyClamp, cfg.ControllerOptions().Policy)
	assert.Equal(t, kinematics.AlgorithmFABRIK, cfg.ControllerOptions().Algorithm)
	assert.Equal(t, 0.001, cfg.ControllerOptions().Params.Tolerance)

	spec := cfg.ArmSpec()
	assert.Equal(t, []float64{3, 2, 1}, spec.Links)
	assert.Equal(t, kinematics.Unconstrained(), spec.Limits[0])
	assert.Equal(t, kinematics.Limit{Min: -90, Max: 90}, spec.Limits[1])
	assert.Equal(t, 0.0, spec.Limits[2].Min)
	assert.True(t, spec.Limits[2].Contains(1e9))
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9191\n")
	t.Setenv("ARM_SERVER_PORT", "7070")
	t.Setenv("ARM_SOLVER_MAX_ITERATIONS", "42")
	t.Setenv("ARM_LOG_LEVEL", "debug")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 42, cfg.Solver.MaxIterations)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"port", "server:\n  port: 70000\n"},
		{"policy", "control:\n  policy: ignore\n"},
		{"algorithm", "solver:\n  algorithm: ccd\n"},
		{"format", "log:\n  format: xml\n"},
		{"arm", "arm:\n  links: [1, 1]\n  angles: [0, 200]\n  limits: [{}, {min: -90, max: 90}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWithFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("ARM_SERVER_PORT"))
	assert.Equal(t, "solver.max_iterations", envKey("ARM_SOLVER_MAX_ITERATIONS"))
	assert.Equal(t, "debug", envKey("ARM_DEBUG"))
}
