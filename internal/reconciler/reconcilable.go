package reconciler

import (
	"context"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/client"

	"tedep/pkg/logging"
)

// Reconcilable is the business logic of a controller for resource type T.
//
// Apply runs for every object that is not being deleted, after the engine
// has made sure the finalizer is present. Cleanup runs once for an object
// that is being deleted while it still carries the finalizer; the finalizer
// is removed only after Cleanup succeeds. Both must be idempotent. The engine
// performs no cluster mutations besides adding and removing the finalizer.
type Reconcilable[T client.Object] interface {
	// FinalizerName is the finalizer owned by this controller,
	// e.g. "finalizer.tedep.quantum-box.com".
	FinalizerName() string

	Apply(ctx context.Context, obj T, rctx *Context) (Action, error)
	Cleanup(ctx context.Context, obj T, rctx *Context) (Action, error)

	// ErrorPolicy maps a failed reconcile to the next action. It is also
	// consulted for engine failures such as a conflicting finalizer patch.
	ErrorPolicy(ctx context.Context, key client.ObjectKey, err error, rctx *Context) Action
}

// DefaultErrorPolicy logs the failure and retries after the retry interval.
// The delay is fixed, there is no exponential backoff. Conflicts and other
// transient API errors are expected to clear on retry and are logged at info.
func DefaultErrorPolicy(_ context.Context, key client.ObjectKey, err error, rctx *Context) Action {
	switch {
	case IsConflict(err):
		logging.Info("Controller", "conflict on %s %q, retrying: %v", rctx.ResourceKind(), key.Name, err)
	case IsTransient(err):
		logging.Info("Controller", "transient failure on %s %q, retrying: %v", rctx.ResourceKind(), key.Name, err)
	default:
		logging.Warn("Controller", "reconcile failed %s %q: %v", rctx.ResourceKind(), key.Name, err)
	}
	return RequeueAfter(rctx.RetryInterval())
}

// NamespacedServiceInterval is the requeue delay of HandlerFunc reconcilers.
const NamespacedServiceInterval = 60 * time.Second

// HandlerFunc adapts a plain function into a Reconcilable. The function runs
// on apply, cleanup only releases the finalizer. Success requeues after
// NamespacedServiceInterval; failures follow DefaultErrorPolicy.
type HandlerFunc[T client.Object] struct {
	Finalizer string
	Fn        func(ctx context.Context, obj T) error
}

func (h HandlerFunc[T]) FinalizerName() string {
	return h.Finalizer
}

func (h HandlerFunc[T]) Apply(ctx context.Context, obj T, _ *Context) (Action, error) {
	if err := h.Fn(ctx, obj); err != nil {
		return Action{}, err
	}
	return RequeueAfter(NamespacedServiceInterval), nil
}

func (h HandlerFunc[T]) Cleanup(context.Context, T, *Context) (Action, error) {
	return AwaitChange(), nil
}

func (h HandlerFunc[T]) ErrorPolicy(ctx context.Context, key client.ObjectKey, err error, rctx *Context) Action {
	return DefaultErrorPolicy(ctx, key, err, rctx)
}
