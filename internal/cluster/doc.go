// Package cluster connects the reconciliation engine to a Kubernetes API
// server through controller-runtime.
//
// A Cluster owns the scheme and a direct (uncached) client used for
// preflight checks, fresh reads and finalizer patches. Every Watch call
// starts its own namespace-scoped informer cache, so controllers of
// different types and namespaces are isolated from each other and stop
// watching as soon as their task is cancelled.
package cluster
