package config

import "time"

const (
	// DefaultReconcileInterval is the requeue delay after a successful apply.
	DefaultReconcileInterval = 60 * time.Second

	// DefaultRetryInterval is the requeue delay after a failed reconcile.
	DefaultRetryInterval = 10 * time.Second

	// DefaultHTTPAddress serves health and metrics on all interfaces.
	DefaultHTTPAddress = "0.0.0.0:8080"
)

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() Config {
	return Config{
		ReconcileInterval: Duration(DefaultReconcileInterval),
		RetryInterval:     Duration(DefaultRetryInterval),
		HTTPAddress:       DefaultHTTPAddress,
	}
}
