// Package server exposes the health and metrics endpoints of tedep.
//
// Endpoints:
//
//   - GET / - service name, version and the reconcile summary of every controller
//   - GET /health - {"status":"healthy"} while the process is serving
//   - GET /metrics - Prometheus exposition of the controller-runtime registry,
//     which carries the tedep_* reconcile collectors next to the client-go ones
//
// The server shuts down gracefully when the context passed to Run is done.
package server
