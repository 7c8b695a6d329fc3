package cluster

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"tedep/internal/reconciler"
	"tedep/pkg/logging"
)

// Cluster implements reconciler.Cluster on top of controller-runtime.
type Cluster struct {
	restConfig *rest.Config
	scheme     *runtime.Scheme
	client     client.Client

	// newCache is swapped in tests
	newCache func(config *rest.Config, opts cache.Options) (cache.Cache, error)
}

// New creates a Cluster for the API server described by restConfig.
// A nil scheme selects NewScheme().
func New(restConfig *rest.Config, scheme *runtime.Scheme) (*Cluster, error) {
	if restConfig == nil {
		return nil, errors.New("rest config is required")
	}
	if scheme == nil {
		scheme = NewScheme()
	}

	c, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	return &Cluster{
		restConfig: restConfig,
		scheme:     scheme,
		client:     c,
		newCache:   cache.New,
	}, nil
}

// Client returns the direct client. Reads go to the API server, not to an
// informer cache, so every reconcile sees the latest stored state.
func (c *Cluster) Client() client.Client {
	return c.client
}

// Scheme returns the scheme the cluster was created with.
func (c *Cluster) Scheme() *runtime.Scheme {
	return c.scheme
}

// Watch starts an informer for req.Object in req.Namespace and forwards its
// notifications to events until ctx is done.
func (c *Cluster) Watch(ctx context.Context, req reconciler.WatchRequest, events chan<- reconciler.ChangeEvent) error {
	opts := cache.Options{Scheme: c.scheme}
	if req.Namespace != "" {
		opts.DefaultNamespaces = map[string]cache.Config{
			req.Namespace: {},
		}
	}

	informerCache, err := c.newCache(c.restConfig, opts)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	informer, err := informerCache.GetInformer(ctx, req.Object)
	if err != nil {
		return fmt.Errorf("failed to get informer for %T: %w", req.Object, err)
	}

	registration, err := informer.AddEventHandler(newEventHandler(ctx, events))
	if err != nil {
		return fmt.Errorf("failed to add event handler for %T: %w", req.Object, err)
	}
	defer func() {
		if err := informer.RemoveEventHandler(registration); err != nil {
			logging.Debug("Cluster", "Failed to remove event handler: %v", err)
		}
	}()

	cacheCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	startErr := make(chan error, 1)
	go func() {
		err := informerCache.Start(cacheCtx)
		if err != nil {
			cancel()
		}
		startErr <- err
	}()

	if !informerCache.WaitForCacheSync(cacheCtx) {
		if ctx.Err() != nil {
			return nil
		}
		// cacheCtx is only cancelled early by a failed Start
		if cacheCtx.Err() != nil {
			if err := <-startErr; err != nil {
				return fmt.Errorf("cache stopped with error: %w", err)
			}
		}
		return errors.New("failed to sync cache")
	}
	logging.Info("Cluster", "Watching %T in namespace %s", req.Object, namespaceDisplay(req.Namespace))

	select {
	case <-ctx.Done():
		return nil
	case err := <-startErr:
		if err != nil {
			return fmt.Errorf("cache stopped with error: %w", err)
		}
		return nil
	}
}

func namespaceDisplay(namespace string) string {
	if namespace == "" {
		return "all namespaces"
	}
	return namespace
}
