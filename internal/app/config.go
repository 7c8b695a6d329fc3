package app

import (
	"io"
	"time"

	"tedep/internal/config"
	"tedep/pkg/logging"
)

// Config holds the application configuration
type Config struct {
	// Namespace all controllers watch. Overrides the config file.
	Namespace string

	// Path of an optional YAML configuration file
	ConfigPath string

	// Logging settings
	Debug     bool
	LogFormat logging.Format
	LogOutput io.Writer

	// Version reported on the HTTP root endpoint
	Version string

	// Command line overrides; zero values leave the file or default value in place
	ReconcileInterval       time.Duration
	RetryInterval           time.Duration
	HTTPAddress             string
	MaxConcurrentReconciles int

	// Settings is the effective configuration, filled by NewApplication.
	// Pre-populate it to skip loading ConfigPath.
	Settings *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(namespace, configPath string, debug bool) *Config {
	return &Config{
		Namespace:  namespace,
		ConfigPath: configPath,
		Debug:      debug,
		LogFormat:  logging.FormatText,
	}
}

// applyOverrides copies the command line values that were set into settings.
func (c *Config) applyOverrides(settings *config.Config) {
	if c.Namespace != "" {
		settings.Namespace = c.Namespace
	}
	if c.ReconcileInterval > 0 {
		settings.ReconcileInterval = config.Duration(c.ReconcileInterval)
	}
	if c.RetryInterval > 0 {
		settings.RetryInterval = config.Duration(c.RetryInterval)
	}
	if c.HTTPAddress != "" {
		settings.HTTPAddress = c.HTTPAddress
	}
	if c.MaxConcurrentReconciles > 0 {
		settings.MaxConcurrentReconciles = c.MaxConcurrentReconciles
	}
}
