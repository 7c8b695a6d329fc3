package reconciler

import (
	"context"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/client"
)

// ChangeEvent represents a detected change in a watched resource.
type ChangeEvent struct {
	// Key identifies the object that changed.
	Key client.ObjectKey

	// Operation describes what kind of change occurred.
	Operation ChangeOperation

	// Timestamp is when the change was detected.
	Timestamp time.Time
}

// ChangeOperation represents the type of change detected.
type ChangeOperation string

const (
	// OperationCreate indicates a new resource was created.
	OperationCreate ChangeOperation = "Create"

	// OperationUpdate indicates an existing resource was modified.
	OperationUpdate ChangeOperation = "Update"

	// OperationDelete indicates a resource was deleted.
	OperationDelete ChangeOperation = "Delete"
)

// WatchRequest describes the collection a Cluster should watch.
type WatchRequest struct {
	// Namespace restricts the watch to a single namespace.
	Namespace string

	// Object is a prototype of the watched type. Implementations must not
	// mutate it.
	Object client.Object
}

// Cluster is the handle to the API server the controllers share.
//
// Client is used for point reads and finalizer patches. Watch blocks until ctx
// is done, delivering a change event for every object that exists when the
// watch starts and for every later create, update and delete.
type Cluster interface {
	Client() client.Client
	Watch(ctx context.Context, req WatchRequest, events chan<- ChangeEvent) error
}

// Task is a running unit of work. It returns when ctx is cancelled or when
// the work fails.
type Task func(ctx context.Context) error

// EmptyTask completes immediately.
func EmptyTask(context.Context) error { return nil }
