package reconciler

import (
	"context"
	"slices"
	"sync"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"

	tedepv1 "tedep/pkg/apis/tedep/v1"
)

// Helpers in this file are exported so the black-box tests in
// package reconciler_test can share them.

// TestFinalizer is the finalizer used throughout the tests.
const TestFinalizer = "finalizer.x.y"

// NewTestScheme returns a scheme with core types and, optionally, the tedep types.
func NewTestScheme(withTedep bool) *runtime.Scheme {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	if withTedep {
		utilruntime.Must(tedepv1.AddToScheme(scheme))
	}
	return scheme
}

// NewTestNamespace returns a Namespace object.
func NewTestNamespace(name string) *corev1.Namespace {
	return &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name}}
}

// NewTestWorkspace returns a TerraformWorkspace with the given finalizers.
func NewTestWorkspace(namespace, name string, finalizers ...string) *tedepv1.TerraformWorkspace {
	return &tedepv1.TerraformWorkspace{
		ObjectMeta: metav1.ObjectMeta{
			Name:       name,
			Namespace:  namespace,
			Finalizers: finalizers,
		},
		Spec: tedepv1.TerraformWorkspaceSpec{
			Provider: tedepv1.TerraformWorkspaceProvider{Name: tedepv1.ProviderTerraformCloud},
		},
	}
}

// NewTestWorkspaceObject is the prototype factory of the test controllers.
func NewTestWorkspaceObject() *tedepv1.TerraformWorkspace {
	return &tedepv1.TerraformWorkspace{}
}

// RecordingHandler is a Reconcilable that records every call.
type RecordingHandler struct {
	mu sync.Mutex

	Finalizer string

	ApplyAction   Action
	CleanupAction Action

	// ApplyErrs and CleanupErrs are consumed one per call; nil entries succeed.
	ApplyErrs   []error
	CleanupErrs []error

	Applied       []client.ObjectKey
	CleanedUp     []client.ObjectKey
	PolicyErrors  []error
	PolicyActions []Action

	// SawFinalizer records whether Apply observed the finalizer on the object.
	SawFinalizer []bool
}

func (h *RecordingHandler) FinalizerName() string {
	return h.Finalizer
}

func (h *RecordingHandler) Apply(_ context.Context, obj *tedepv1.TerraformWorkspace, _ *Context) (Action, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Applied = append(h.Applied, client.ObjectKeyFromObject(obj))
	h.SawFinalizer = append(h.SawFinalizer, slices.Contains(obj.GetFinalizers(), h.Finalizer))
	if len(h.ApplyErrs) > 0 {
		err := h.ApplyErrs[0]
		h.ApplyErrs = h.ApplyErrs[1:]
		if err != nil {
			return Action{}, err
		}
	}
	return h.ApplyAction, nil
}

func (h *RecordingHandler) Cleanup(_ context.Context, obj *tedepv1.TerraformWorkspace, _ *Context) (Action, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.CleanedUp = append(h.CleanedUp, client.ObjectKeyFromObject(obj))
	if len(h.CleanupErrs) > 0 {
		err := h.CleanupErrs[0]
		h.CleanupErrs = h.CleanupErrs[1:]
		if err != nil {
			return Action{}, err
		}
	}
	return h.CleanupAction, nil
}

func (h *RecordingHandler) ErrorPolicy(ctx context.Context, key client.ObjectKey, err error, rctx *Context) Action {
	action := DefaultErrorPolicy(ctx, key, err, rctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.PolicyErrors = append(h.PolicyErrors, err)
	h.PolicyActions = append(h.PolicyActions, action)
	return action
}

// Counts returns the number of Apply, Cleanup and ErrorPolicy calls.
func (h *RecordingHandler) Counts() (applies, cleanups, policies int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Applied), len(h.CleanedUp), len(h.PolicyErrors)
}

// LastPolicyAction returns the most recent ErrorPolicy result.
func (h *RecordingHandler) LastPolicyAction() (Action, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.PolicyActions) == 0 {
		return Action{}, false
	}
	return h.PolicyActions[len(h.PolicyActions)-1], true
}
