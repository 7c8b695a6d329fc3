package cluster

import (
	"context"
	"time"

	toolscache "k8s.io/client-go/tools/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"tedep/internal/reconciler"
	"tedep/pkg/logging"
)

// eventHandler turns informer notifications into change events.
type eventHandler struct {
	ctx    context.Context
	events chan<- reconciler.ChangeEvent
}

func newEventHandler(ctx context.Context, events chan<- reconciler.ChangeEvent) toolscache.ResourceEventHandler {
	h := &eventHandler{ctx: ctx, events: events}
	return toolscache.ResourceEventHandlerFuncs{
		AddFunc: func(obj interface{}) {
			h.handle(reconciler.OperationCreate, obj)
		},
		UpdateFunc: func(_, newObj interface{}) {
			h.handle(reconciler.OperationUpdate, newObj)
		},
		DeleteFunc: func(obj interface{}) {
			// Handle DeletedFinalStateUnknown for objects deleted while the watch was down
			if deletedState, ok := obj.(toolscache.DeletedFinalStateUnknown); ok {
				obj = deletedState.Obj
			}
			h.handle(reconciler.OperationDelete, obj)
		},
	}
}

func (h *eventHandler) handle(op reconciler.ChangeOperation, obj interface{}) {
	clientObj, ok := obj.(client.Object)
	if !ok {
		logging.Warn("Cluster", "Failed to extract metadata from %s event (%T)", op, obj)
		return
	}

	event := reconciler.ChangeEvent{
		Key:       client.ObjectKeyFromObject(clientObj),
		Operation: op,
		Timestamp: time.Now(),
	}

	// The queue de-duplicates, so blocking here only applies back pressure
	// to the informer and never loses an event.
	select {
	case h.events <- event:
		logging.Debug("Cluster", "Emitted change event: %s %s", event.Operation, event.Key)
	case <-h.ctx.Done():
	}
}
