package config

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the global configuration shared by every controller of a process.
type Config struct {
	// Namespace is the namespace all controllers watch.
	Namespace string `yaml:"namespace,omitempty"`

	// ReconcileInterval is the requeue delay after a successful apply.
	ReconcileInterval Duration `yaml:"reconcileInterval,omitempty"`

	// RetryInterval is the requeue delay after a failed reconcile.
	RetryInterval Duration `yaml:"retryInterval,omitempty"`

	// HTTPAddress is the listen address of the health and metrics endpoint.
	HTTPAddress string `yaml:"httpAddress,omitempty"`

	// MaxConcurrentReconciles bounds parallel reconciles per controller.
	// Zero means unbounded.
	MaxConcurrentReconciles int `yaml:"maxConcurrentReconciles,omitempty"`

	// Controllers holds per-controller overrides keyed by controller name.
	Controllers map[string]ControllerConfig `yaml:"controllers,omitempty"`
}

// ControllerConfig overrides global settings for a single controller.
type ControllerConfig struct {
	Disabled                bool     `yaml:"disabled,omitempty"`
	MaxConcurrentReconciles int      `yaml:"maxConcurrentReconciles,omitempty"`
	ReconcileInterval       Duration `yaml:"reconcileInterval,omitempty"`
	RetryInterval           Duration `yaml:"retryInterval,omitempty"`
}

// Controller returns the overrides for the named controller, or the zero
// value if there are none.
func (c Config) Controller(name string) ControllerConfig {
	return c.Controllers[name]
}

// IsControllerEnabled reports whether the named controller should be registered.
func (c Config) IsControllerEnabled(name string) bool {
	return !c.Controllers[name].Disabled
}

// Duration is a time.Duration that decodes from YAML as either a duration
// string or a number of seconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}

	if secs, err := strconv.ParseInt(value.Value, 10, 64); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}

	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", value.Line, value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
