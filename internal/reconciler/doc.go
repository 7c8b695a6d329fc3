// Package reconciler implements the reconciliation engine of tedep.
//
// # Overview
//
// A Controller watches one resource type in one namespace and drives every
// object through a finalizer-guarded protocol implemented by a Reconcilable:
//
//   - a live object gets the controller's finalizer, then Apply runs
//   - a deleted object that still carries the finalizer runs Cleanup, after
//     which the finalizer is removed and the API server can drop the object
//   - a deleted object without the finalizer is left alone
//
// Because the API server refuses to remove an object while finalizers
// remain, Cleanup is guaranteed to run at least once for every object that
// Apply has seen.
//
// # Architecture
//
//   - Cluster: watch and client access to the API server
//   - Preflight: startup validation of the namespace and resource type
//   - Queue: de-duplicating work queue with per-key delayed requeue
//   - Controller: watch loop, dispatch and the finalizer state machine
//   - Metrics: per-controller counters mirrored into Prometheus
//
// # Usage
//
//	c := reconciler.NewController(
//	    func() *tedepv1.TerraformWorkspace { return &tedepv1.TerraformWorkspace{} },
//	    cfg,
//	    reconciler.Config{Name: "tfws"},
//	    handler,
//	)
//	task, err := c.Start(ctx, cluster, "infra")
//	if err != nil {
//	    return err // *ControllerError, nothing is watched
//	}
//	return task(ctx)
//
// # Retries
//
// Failed reconciles are handed to the Reconcilable's ErrorPolicy, which
// returns the next Action. DefaultErrorPolicy requeues after the fixed retry
// interval. A new watch event for a key cancels its pending requeue.
package reconciler
