package reconciler

import (
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"tedep/internal/config"
)

// Config describes a single controller.
type Config struct {
	// Name identifies the controller in logs, metrics and configuration.
	Name string

	// MaxConcurrentReconciles bounds parallel reconciles of distinct keys.
	// Zero means unbounded. A single key is never reconciled concurrently.
	MaxConcurrentReconciles int

	// ReconcileInterval and RetryInterval override the global values when
	// positive.
	ReconcileInterval time.Duration
	RetryInterval     time.Duration
}

// Merge applies the per-controller overrides of the global configuration.
func (c Config) Merge(global config.Config) Config {
	override := global.Controller(c.Name)
	if override.MaxConcurrentReconciles > 0 {
		c.MaxConcurrentReconciles = override.MaxConcurrentReconciles
	} else if c.MaxConcurrentReconciles == 0 {
		c.MaxConcurrentReconciles = global.MaxConcurrentReconciles
	}
	if override.ReconcileInterval > 0 {
		c.ReconcileInterval = override.ReconcileInterval.Std()
	}
	if override.RetryInterval > 0 {
		c.RetryInterval = override.RetryInterval.Std()
	}
	return c
}

// Context is the read-only state shared by every reconcile of a controller.
type Context struct {
	client            client.Client
	namespace         string
	gvk               schema.GroupVersionKind
	reconcileInterval time.Duration
	retryInterval     time.Duration
	logger            logr.Logger
	metrics           *Metrics
}

// NewContext builds the context of a controller from the global configuration
// and the controller's own configuration. Controller values win when set.
func NewContext(c client.Client, namespace string, gvk schema.GroupVersionKind, global config.Config, cfg Config, logger logr.Logger) *Context {
	reconcileInterval := global.ReconcileInterval.Std()
	if cfg.ReconcileInterval > 0 {
		reconcileInterval = cfg.ReconcileInterval
	}
	if reconcileInterval <= 0 {
		reconcileInterval = config.DefaultReconcileInterval
	}

	retryInterval := global.RetryInterval.Std()
	if cfg.RetryInterval > 0 {
		retryInterval = cfg.RetryInterval
	}
	if retryInterval <= 0 {
		retryInterval = config.DefaultRetryInterval
	}

	return &Context{
		client:            c,
		namespace:         namespace,
		gvk:               gvk,
		reconcileInterval: reconcileInterval,
		retryInterval:     retryInterval,
		logger:            logger.WithValues("controller", cfg.Name, "namespace", namespace, "kind", gvk.Kind),
	}
}

func (c *Context) Client() client.Client { return c.client }
func (c *Context) Namespace() string { return c.namespace }
func (c *Context) GroupVersionKind() schema.GroupVersionKind { return c.gvk }
func (c *Context) ReconcileInterval() time.Duration { return c.reconcileInterval }
func (c *Context) RetryInterval() time.Duration { return c.retryInterval }
func (c *Context) Logger() logr.Logger { return c.logger }

// ResourceKind returns the kind of the reconciled resource, e.g. "TerraformWorkspace".
func (c *Context) ResourceKind() string {
	return c.gvk.Kind
}
