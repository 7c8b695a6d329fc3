package reconciler

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"tedep/pkg/logging"
)

// Preflight verifies that namespace exists and that the resource type of obj
// can be listed in it. It returns the resolved GroupVersionKind of obj.
//
// Failures are returned as *PreflightError and are never retried: a
// controller that fails preflight does not start.
func Preflight(ctx context.Context, c client.Client, namespace string, obj client.Object) (schema.GroupVersionKind, error) {
	ns := &corev1.Namespace{}
	if err := c.Get(ctx, client.ObjectKey{Name: namespace}, ns); err != nil {
		reason := ReasonTransport
		if apierrors.IsNotFound(err) {
			reason = ReasonNamespaceNotFound
		}
		return schema.GroupVersionKind{}, &PreflightError{
			Check:  CheckNamespace,
			Reason: reason,
			Err:    fmt.Errorf("get namespace %s: %w", namespace, err),
		}
	}
	logging.Debug("Preflight", "Namespace %s exists", namespace)

	gvk, err := c.GroupVersionKindFor(obj)
	if err != nil {
		return schema.GroupVersionKind{}, &PreflightError{
			Check:  CheckResource,
			Reason: classifyListError(err),
			Err:    fmt.Errorf("resolve kind of %T: %w", obj, err),
		}
	}

	list := &metav1.PartialObjectMetadataList{}
	list.SetGroupVersionKind(gvk.GroupVersion().WithKind(gvk.Kind + "List"))
	if err := c.List(ctx, list, client.InNamespace(namespace), client.Limit(1)); err != nil {
		return schema.GroupVersionKind{}, &PreflightError{
			Check:  CheckResource,
			Reason: classifyListError(err),
			Err:    fmt.Errorf("list %s in namespace %s: %w", gvk.Kind, namespace, err),
		}
	}
	logging.Debug("Preflight", "Resource %s is served in namespace %s", gvk, namespace)

	return gvk, nil
}

func classifyListError(err error) PreflightReason {
	switch {
	case meta.IsNoMatchError(err), runtime.IsNotRegisteredError(err), apierrors.IsNotFound(err):
		return ReasonResourceNotInstalled
	default:
		return ReasonTransport
	}
}
