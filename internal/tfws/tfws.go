package tfws

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/client"

	"tedep/internal/config"
	"tedep/internal/reconciler"
	tedepv1 "tedep/pkg/apis/tedep/v1"
	"tedep/pkg/logging"
)

const (
	// ControllerName identifies the controller in configuration and metrics.
	ControllerName = "tfws"

	// FinalizerName is the finalizer the controller puts on every workspace.
	FinalizerName = "finalizer.tedep.quantum-box.com"
)

// Reconciler drives TerraformWorkspace objects.
type Reconciler struct{}

var _ reconciler.Reconcilable[*tedepv1.TerraformWorkspace] = Reconciler{}

func (Reconciler) FinalizerName() string {
	return FinalizerName
}

// Apply requeues the workspace after the reconcile interval.
func (Reconciler) Apply(_ context.Context, ws *tedepv1.TerraformWorkspace, rctx *reconciler.Context) (reconciler.Action, error) {
	logging.Debug("TerraformWorkspace", "Applying %s/%s (provider %s)", ws.Namespace, ws.Name, ws.Spec.Provider.Name)
	return reconciler.RequeueAfter(rctx.ReconcileInterval()), nil
}

// Cleanup releases the workspace.
func (Reconciler) Cleanup(_ context.Context, ws *tedepv1.TerraformWorkspace, _ *reconciler.Context) (reconciler.Action, error) {
	logging.Info("TerraformWorkspace", "Releasing %s/%s", ws.Namespace, ws.Name)
	return reconciler.AwaitChange(), nil
}

func (Reconciler) ErrorPolicy(ctx context.Context, key client.ObjectKey, err error, rctx *reconciler.Context) reconciler.Action {
	return reconciler.DefaultErrorPolicy(ctx, key, err, rctx)
}

// NewController returns the TerraformWorkspace controller configured from cfg.
func NewController(cfg config.Config) *reconciler.Controller[*tedepv1.TerraformWorkspace] {
	return reconciler.NewController(
		func() *tedepv1.TerraformWorkspace { return &tedepv1.TerraformWorkspace{} },
		cfg,
		reconciler.Config{Name: ControllerName},
		Reconciler{},
	)
}
