package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldane-labs/mcmc-go/pkg/samplers"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
controller:
  chains: 4
  max_iterations: 2000
  method: random_walk
  seed: 12345
logging:
  level: DEBUG
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Controller.Chains)
	assert.Equal(t, 2000, cfg.Controller.MaxIterations)
	assert.Equal(t, samplers.MethodRandomWalk, cfg.Controller.Method)
	assert.Equal(t, int64(12345), cfg.Controller.Seed)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)

	// Untouched fields keep their defaults.
	assert.Equal(t, samplers.DefaultTargetAcceptance, cfg.Controller.TargetAcceptance)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero chains", "controller:\n  chains: 0\n  max_iterations: 100\n"},
		{"negative iterations", "controller:\n  chains: 1\n  max_iterations: -5\n"},
		{"unknown method", "controller:\n  chains: 1\n  max_iterations: 100\n  method: gibbs\n"},
		{"bad level", "controller:\n  chains: 1\n  max_iterations: 100\nlogging:\n  level: LOUD\n"},
		{"de with too few chains", "controller:\n  chains: 2\n  max_iterations: 100\n  method: differential_evolution\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Controller.Chains = 3
	cfg.Controller.Seed = 7

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Controller, loaded.Controller)
}

func TestBuildLogger(t *testing.T) {
	cfg := Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "run.log")

	logger, err := cfg.BuildLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
