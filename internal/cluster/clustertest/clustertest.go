// Package clustertest provides an in-memory reconciler.Cluster for tests.
//
// It pairs a controller-runtime client (usually the fake client) with a hand
// driven watch: Watch replays the objects that exist when it starts, and the
// Create, Update and Delete helpers mutate the store and notify every
// matching watch, the way an informer would.
package clustertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"tedep/internal/reconciler"
)

type watcher struct {
	ctx       context.Context
	namespace string
	gvk       schema.GroupVersionKind
	events    chan<- reconciler.ChangeEvent
}

// Cluster implements reconciler.Cluster over an arbitrary client.
type Cluster struct {
	client client.Client

	// WatchErr, when set, is returned by Watch before any event is delivered.
	WatchErr error

	mu       sync.Mutex
	watchers map[*watcher]struct{}
	started  int
}

// New returns a Cluster backed by c.
func New(c client.Client) *Cluster {
	return &Cluster{
		client:   c,
		watchers: make(map[*watcher]struct{}),
	}
}

func (c *Cluster) Client() client.Client {
	return c.client
}

// Watch replays existing objects as create events, then delivers
// notifications until ctx is done.
func (c *Cluster) Watch(ctx context.Context, req reconciler.WatchRequest, events chan<- reconciler.ChangeEvent) error {
	c.mu.Lock()
	c.started++
	c.mu.Unlock()

	if c.WatchErr != nil {
		return c.WatchErr
	}

	gvk, err := c.client.GroupVersionKindFor(req.Object)
	if err != nil {
		return err
	}

	w := &watcher{ctx: ctx, namespace: req.Namespace, gvk: gvk, events: events}
	c.mu.Lock()
	c.watchers[w] = struct{}{}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.watchers, w)
		c.mu.Unlock()
	}()

	list := &metav1.PartialObjectMetadataList{}
	list.SetGroupVersionKind(gvk.GroupVersion().WithKind(gvk.Kind + "List"))
	if err := c.client.List(ctx, list, client.InNamespace(req.Namespace)); err != nil {
		return fmt.Errorf("initial list: %w", err)
	}
	for i := range list.Items {
		w.send(client.ObjectKeyFromObject(&list.Items[i]), reconciler.OperationCreate)
	}

	<-ctx.Done()
	return nil
}

// WatchesStarted returns how many times Watch has been called.
func (c *Cluster) WatchesStarted() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// ActiveWatches returns the number of watches currently delivering events.
func (c *Cluster) ActiveWatches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.watchers)
}

// Notify delivers a change event for obj to every watch of its type and namespace.
func (c *Cluster) Notify(obj client.Object, op reconciler.ChangeOperation) error {
	gvk, err := c.client.GroupVersionKindFor(obj)
	if err != nil {
		return err
	}

	c.mu.Lock()
	targets := make([]*watcher, 0, len(c.watchers))
	for w := range c.watchers {
		if w.gvk == gvk && (w.namespace == "" || w.namespace == obj.GetNamespace()) {
			targets = append(targets, w)
		}
	}
	c.mu.Unlock()

	for _, w := range targets {
		w.send(client.ObjectKeyFromObject(obj), op)
	}
	return nil
}

// Create stores obj and notifies watches.
func (c *Cluster) Create(ctx context.Context, obj client.Object) error {
	if err := c.client.Create(ctx, obj); err != nil {
		return err
	}
	return c.Notify(obj, reconciler.OperationCreate)
}

// Update writes obj and notifies watches.
func (c *Cluster) Update(ctx context.Context, obj client.Object) error {
	if err := c.client.Update(ctx, obj); err != nil {
		return err
	}
	return c.Notify(obj, reconciler.OperationUpdate)
}

// Delete requests deletion of obj and notifies watches. Objects with
// finalizers stay in the store with a deletion timestamp, which arrives at
// the controller as an update, as it would from a real API server.
func (c *Cluster) Delete(ctx context.Context, obj client.Object) error {
	if err := c.client.Delete(ctx, obj); err != nil {
		return err
	}
	op := reconciler.OperationDelete
	if len(obj.GetFinalizers()) > 0 {
		op = reconciler.OperationUpdate
	}
	return c.Notify(obj, op)
}

func (w *watcher) send(key client.ObjectKey, op reconciler.ChangeOperation) {
	select {
	case w.events <- reconciler.ChangeEvent{Key: key, Operation: op, Timestamp: time.Now()}:
	case <-w.ctx.Done():
	}
}
