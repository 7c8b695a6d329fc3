package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"tedep/internal/config"
	"tedep/pkg/logging"
)

// eventBufferSize is the capacity of the channel between the watch and the
// queue. The queue de-duplicates, so the buffer only absorbs bursts.
const eventBufferSize = 100

// Controller drives every object of type T in one namespace through the
// finalizer protocol of its Reconcilable.
type Controller[T client.Object] struct {
	newObject func() T
	config    Config
	global    config.Config
	handler   Reconcilable[T]

	mu      sync.Mutex
	metrics map[string]*Metrics
}

// NewController creates a controller. newObject must return a fresh, empty
// object of the reconciled type on every call.
func NewController[T client.Object](newObject func() T, global config.Config, cfg Config, handler Reconcilable[T]) *Controller[T] {
	cfg = cfg.Merge(global)
	return &Controller[T]{
		newObject: newObject,
		config:    cfg,
		global:    global,
		handler:   handler,
		metrics:   make(map[string]*Metrics),
	}
}

// Name returns the configured controller name.
func (c *Controller[T]) Name() string {
	return c.config.Name
}

// Metrics returns the metrics of the controller in namespace. A controller
// started in several namespaces keeps separate metrics for each.
func (c *Controller[T]) Metrics(namespace string) *Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.metrics[namespace]
	if !ok {
		m = NewMetrics(c.Name(), namespace)
		c.metrics[namespace] = m
	}
	return m
}

// Start validates that the controller can run in namespace and returns the
// task running its watch loop. No watch is opened when validation fails;
// the error is a *ControllerError.
func (c *Controller[T]) Start(ctx context.Context, cluster Cluster, namespace string) (Task, error) {
	if c.handler.FinalizerName() == "" {
		return nil, &ControllerError{
			Controller: c.Name(),
			Namespace:  namespace,
			Err:        errors.New("finalizer name must not be empty"),
		}
	}

	gvk, err := Preflight(ctx, cluster.Client(), namespace, c.newObject())
	if err != nil {
		logging.Error("Preflight", err, "Controller %s cannot start in namespace %s", c.Name(), namespace)
		return nil, &ControllerError{Controller: c.Name(), Namespace: namespace, Err: err}
	}

	rctx := NewContext(cluster.Client(), namespace, gvk, c.global, c.config, logging.Logr())
	rctx.metrics = c.Metrics(namespace)

	logging.Info("Controller", "Controller %s ready for %s in namespace %s (reconcile every %s, retry after %s)",
		c.Name(), gvk.Kind, namespace, rctx.ReconcileInterval(), rctx.RetryInterval())

	return func(ctx context.Context) error {
		return c.run(ctx, cluster, rctx)
	}, nil
}

func (c *Controller[T]) run(ctx context.Context, cluster Cluster, rctx *Context) error {
	queue := NewDelayedQueue()
	events := make(chan ChangeEvent, eventBufferSize)

	var sem *semaphore.Weighted
	if c.config.MaxConcurrentReconciles > 0 {
		sem = semaphore.NewWeighted(int64(c.config.MaxConcurrentReconciles))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		req := WatchRequest{Namespace: rctx.Namespace(), Object: c.newObject()}
		if err := cluster.Watch(gctx, req, events); err != nil {
			return fmt.Errorf("watch %s in namespace %s: %w", rctx.ResourceKind(), rctx.Namespace(), err)
		}
		return nil
	})

	g.Go(func() error {
		c.processChangeEvents(gctx, events, queue)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		queue.Shutdown()
		return nil
	})

	g.Go(func() error {
		c.dispatch(gctx, queue, sem, rctx)
		return nil
	})

	logging.Info("Controller", "Started controller %s in namespace %s", c.Name(), rctx.Namespace())
	err := g.Wait()
	logging.Info("Controller", "Stopped controller %s in namespace %s", c.Name(), rctx.Namespace())
	return err
}

// processChangeEvents converts change events to queued keys.
func (c *Controller[T]) processChangeEvents(ctx context.Context, events <-chan ChangeEvent, queue *delayedQueue) {
	for {
		select {
		case <-ctx.Done():
			return

		case event := <-events:
			logging.Debug("Controller", "Handling change event: %s %s", event.Operation, event.Key)
			queue.Add(event.Key)
		}
	}
}

// dispatch starts one goroutine per dequeued key and waits for all of them
// before returning. The queue never hands out a key that is still being
// processed, so a slow handler only delays its own object.
func (c *Controller[T]) dispatch(ctx context.Context, queue *delayedQueue, sem *semaphore.Weighted, rctx *Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		key, ok := queue.Get(ctx)
		if !ok {
			return
		}

		if sem != nil {
			if err := sem.Acquire(ctx, 1); err != nil {
				queue.Done(key)
				return
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem != nil {
				defer sem.Release(1)
			}
			defer queue.Done(key)

			c.processKey(ctx, queue, rctx, key)
		}()
	}
}

func (c *Controller[T]) processKey(ctx context.Context, queue *delayedQueue, rctx *Context, key client.ObjectKey) {
	reconcileID := uuid.NewString()
	logger := rctx.Logger().WithValues("name", key.Name, "reconcileID", reconcileID)
	ctx = logr.NewContext(ctx, logger)

	start := time.Now()
	action, result, err := c.reconcile(ctx, rctx, key)
	if err != nil && ctx.Err() != nil {
		// Shutting down, the next run starts from a fresh list.
		return
	}
	if err != nil {
		result = ResultError
		action = c.handler.ErrorPolicy(ctx, key, err, rctx)
	}
	rctx.metrics.RecordReconcile(result, time.Since(start))

	logging.Debug("Controller", "Reconciled %s %s (%s) in %s: %s [reconcileID=%s]",
		rctx.ResourceKind(), key, result, time.Since(start), action, reconcileID)

	if action.Requeue {
		queue.AddAfter(key, action.RequeueAfter)
	}
}

// reconcile fetches the current state of key and runs the finalizer state
// machine on it. A missing object needs no work.
func (c *Controller[T]) reconcile(ctx context.Context, rctx *Context, key client.ObjectKey) (Action, string, error) {
	obj := c.newObject()
	if err := rctx.Client().Get(ctx, key, obj); err != nil {
		if apierrors.IsNotFound(err) {
			return AwaitChange(), ResultSkipped, nil
		}
		return Action{}, ResultError, fmt.Errorf("get %s %s: %w", rctx.ResourceKind(), key, err)
	}

	action, event, err := ReconcileWithFinalizer(ctx, obj, c.handler, rctx)
	if err != nil {
		return Action{}, ResultError, err
	}

	switch event {
	case EventApply:
		return action, ResultApply, nil
	case EventCleanup:
		return action, ResultCleanup, nil
	default:
		return action, ResultSkipped, nil
	}
}
