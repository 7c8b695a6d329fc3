// Package config provides the runtime configuration of tedep.
//
// Configuration comes from three layers, later layers winning:
//
//  1. Built-in defaults (GetDefaultConfig)
//  2. An optional YAML file passed with --config
//  3. Command line flags of the run command
//
// # File Format
//
//	namespace: infra
//	reconcileInterval: 60s
//	retryInterval: 10s
//	httpAddress: 0.0.0.0:8080
//	maxConcurrentReconciles: 4
//	controllers:
//	  terraformworkspace:
//	    retryInterval: 30s
//	  legacy:
//	    disabled: true
//
// Durations accept Go duration strings ("90s", "5m") or a plain integer
// number of seconds.
//
// The configuration is read once at startup and never changes while the
// controllers run.
package config
