// Package config loads and validates sampling run configuration from YAML.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/haldane-labs/mcmc-go/pkg/errors"
	"github.com/haldane-labs/mcmc-go/pkg/logging"
	"github.com/haldane-labs/mcmc-go/pkg/samplers"
)

// Config is the top-level configuration file structure.
type Config struct {
	// Controller holds the sampling run parameters.
	Controller samplers.ControllerConfig `yaml:"controller" validate:"required"`

	// Logging configures the run's log destination and verbosity.
	Logging LoggingConfig `yaml:"logging,omitempty" validate:"omitempty"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR, FATAL. Empty means INFO.
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`
	// File, when set, adds a JSON-lines log file next to console output.
	File string `yaml:"file,omitempty"`
	// Color enables ANSI colors on console output.
	Color bool `yaml:"color,omitempty"`
}

var validate = validator.New()

// Default returns a configuration with the controller defaults filled in.
func Default() *Config {
	return &Config{
		Controller: samplers.DefaultControllerConfig(),
		Logging:    LoggingConfig{Level: "INFO"},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfig, "reading config file")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfig, "parsing config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.InvalidConfig, "invalid configuration")
	}
	return c.Controller.Validate()
}

// Save writes the configuration to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// BuildLogger constructs a logger matching the logging section.
func (c *Config) BuildLogger() (*logging.Logger, error) {
	outputs := []logging.Output{
		logging.NewConsoleOutput(true, logging.WithColor(c.Logging.Color)),
	}
	if c.Logging.File != "" {
		fileOut, err := logging.NewFileOutput(c.Logging.File)
		if err != nil {
			return nil, errors.Wrap(err, errors.InvalidConfig, "opening log file")
		}
		outputs = append(outputs, fileOut)
	}
	return logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(c.Logging.Level),
		Outputs:  outputs,
	}), nil
}
