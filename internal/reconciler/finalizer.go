package reconciler

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"tedep/pkg/logging"
)

// FinalizerEvent is the step of the finalizer protocol an object is in.
type FinalizerEvent int

const (
	// EventNone means there is nothing to do: the object is being deleted
	// and our finalizer is already gone.
	EventNone FinalizerEvent = iota

	// EventApply means the object is live and must be driven to its desired state.
	EventApply

	// EventCleanup means the object is being deleted and still carries our finalizer.
	EventCleanup
)

func (e FinalizerEvent) String() string {
	switch e {
	case EventApply:
		return "Apply"
	case EventCleanup:
		return "Cleanup"
	default:
		return "None"
	}
}

// EventFor derives the finalizer event of obj for the given finalizer.
func EventFor(obj client.Object, finalizer string) FinalizerEvent {
	if obj.GetDeletionTimestamp().IsZero() {
		return EventApply
	}
	if controllerutil.ContainsFinalizer(obj, finalizer) {
		return EventCleanup
	}
	return EventNone
}

// ReconcileWithFinalizer runs one step of the finalizer state machine on obj:
//
//   - not being deleted: add the finalizer if it is missing, then Apply
//   - being deleted with the finalizer: Cleanup, then remove the finalizer
//   - being deleted without the finalizer: nothing
//
// Finalizer patches use an optimistic lock, so a concurrent writer makes the
// patch fail with a conflict instead of being overwritten. Every failure is
// returned as *FinalizerError. obj is updated in place by the patches.
func ReconcileWithFinalizer[T client.Object](ctx context.Context, obj T, r Reconcilable[T], rctx *Context) (Action, FinalizerEvent, error) {
	if obj.GetName() == "" {
		return Action{}, EventNone, &FinalizerError{
			Op:  OpUnnamedObject,
			Err: fmt.Errorf("%s object has no name", rctx.ResourceKind()),
		}
	}

	finalizer := r.FinalizerName()
	event := EventFor(obj, finalizer)

	switch event {
	case EventApply:
		if !controllerutil.ContainsFinalizer(obj, finalizer) {
			if err := patchFinalizer(ctx, rctx, obj, finalizer, OpAddFinalizer); err != nil {
				return Action{}, event, err
			}
		}

		action, err := r.Apply(ctx, obj, rctx)
		if err != nil {
			return Action{}, event, &FinalizerError{Op: OpApply, Err: err}
		}
		return action, event, nil

	case EventCleanup:
		action, err := r.Cleanup(ctx, obj, rctx)
		if err != nil {
			return Action{}, event, &FinalizerError{Op: OpCleanup, Err: err}
		}

		if err := patchFinalizer(ctx, rctx, obj, finalizer, OpRemoveFinalizer); err != nil {
			return Action{}, event, err
		}
		return action, event, nil

	default:
		logging.Debug("Controller", "%s %s/%s is being deleted without finalizer %s, nothing to do",
			rctx.ResourceKind(), obj.GetNamespace(), obj.GetName(), finalizer)
		return AwaitChange(), event, nil
	}
}

func patchFinalizer(ctx context.Context, rctx *Context, obj client.Object, finalizer string, op FinalizerOp) error {
	orig, ok := obj.DeepCopyObject().(client.Object)
	if !ok {
		return &FinalizerError{Op: op, Err: fmt.Errorf("deep copy of %T is not a client.Object", obj)}
	}

	if op == OpAddFinalizer {
		controllerutil.AddFinalizer(obj, finalizer)
	} else {
		controllerutil.RemoveFinalizer(obj, finalizer)
	}

	patch := client.MergeFromWithOptions(orig, client.MergeFromWithOptimisticLock{})
	if err := rctx.Client().Patch(ctx, obj, patch); err != nil {
		// The object is gone once the last finalizer is removed
		if op == OpRemoveFinalizer && apierrors.IsNotFound(err) {
			rctx.metrics.RecordFinalizerPatch(op)
			return nil
		}
		return &FinalizerError{Op: op, Err: fmt.Errorf("patch %s %s/%s: %w",
			rctx.ResourceKind(), obj.GetNamespace(), obj.GetName(), err)}
	}

	rctx.metrics.RecordFinalizerPatch(op)
	logging.Debug("Controller", "Finalizer %s %s on %s %s/%s",
		finalizer, op, rctx.ResourceKind(), obj.GetNamespace(), obj.GetName())
	return nil
}
