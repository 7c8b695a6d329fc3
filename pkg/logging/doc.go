// Package logging provides the structured logging used across tedep.
//
// It is a thin layer over Go's slog package that tags every record with a
// subsystem, so controller, preflight and HTTP logs can be filtered apart.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, logging.FormatText, os.Stderr)
//
//	logging.Info("Controller", "Reconciling %s %q", kind, name)
//	logging.Debug("Preflight", "Namespace %s exists", namespace)
//	logging.Warn("Controller", "reconcile failed %s %q: %v", kind, name, err)
//	logging.Error("App", err, "Controller startup failed")
//
// # Formats
//
// FormatText writes logfmt-style lines, FormatJSON writes one JSON object per
// line for log shippers.
//
// # Controller-Runtime Integration
//
// InitForCLI also installs the same handler as the controller-runtime logger,
// so informer and client messages share the output and level filter. Logr
// returns that bridge for callers that need a logr.Logger directly.
package logging
