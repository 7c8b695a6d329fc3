package reconciler

import (
	"errors"
	"fmt"
	"net"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// PreflightCheck names the startup check that failed.
type PreflightCheck string

const (
	CheckNamespace PreflightCheck = "namespace"
	CheckResource  PreflightCheck = "resource"
)

// PreflightReason classifies a preflight failure.
type PreflightReason string

const (
	// ReasonNamespaceNotFound means the target namespace does not exist.
	ReasonNamespaceNotFound PreflightReason = "NamespaceNotFound"

	// ReasonResourceNotInstalled means the API server does not serve the
	// resource type, usually because its CRD is not installed.
	ReasonResourceNotInstalled PreflightReason = "ResourceNotInstalled"

	// ReasonTransport covers every other API failure.
	ReasonTransport PreflightReason = "Transport"
)

// PreflightError is returned when a controller cannot start because its
// namespace or resource type is unusable.
type PreflightError struct {
	Check  PreflightCheck
	Reason PreflightReason
	Err    error
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("preflight %s check failed (%s): %v", e.Check, e.Reason, e.Err)
}

func (e *PreflightError) Unwrap() error {
	return e.Err
}

// FinalizerOp names the step of the finalizer state machine that failed.
type FinalizerOp string

const (
	OpApply           FinalizerOp = "apply"
	OpCleanup         FinalizerOp = "cleanup"
	OpAddFinalizer    FinalizerOp = "add-finalizer"
	OpRemoveFinalizer FinalizerOp = "remove-finalizer"
	OpUnnamedObject   FinalizerOp = "unnamed-object"
)

// FinalizerError wraps every failure of a single reconcile. Handler errors
// come back as OpApply or OpCleanup, patch failures as OpAddFinalizer or
// OpRemoveFinalizer.
type FinalizerError struct {
	Op  FinalizerOp
	Err error
}

func (e *FinalizerError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("finalizer %s failed", e.Op)
	}
	return fmt.Sprintf("finalizer %s failed: %v", e.Op, e.Err)
}

func (e *FinalizerError) Unwrap() error {
	return e.Err
}

// IsHandlerError reports whether the error came from Apply or Cleanup rather
// than from the engine.
func (e *FinalizerError) IsHandlerError() bool {
	return e.Op == OpApply || e.Op == OpCleanup
}

// ControllerError identifies the controller and namespace a startup failure
// belongs to.
type ControllerError struct {
	Controller string
	Namespace  string
	Err        error
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("controller %s in namespace %s: %v", e.Controller, e.Namespace, e.Err)
}

func (e *ControllerError) Unwrap() error {
	return e.Err
}

// PreflightReason returns the preflight reason of the failure, if any.
func (e *ControllerError) PreflightReason() (PreflightReason, bool) {
	var pe *PreflightError
	if errors.As(e.Err, &pe) {
		return pe.Reason, true
	}
	return "", false
}

// IsConflict reports whether err is an optimistic concurrency conflict.
func IsConflict(err error) bool {
	return apierrors.IsConflict(err)
}

// IsTransient reports whether retrying the failed operation may succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var pe *PreflightError
	if errors.As(err, &pe) {
		return pe.Reason == ReasonTransport
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return apierrors.IsConflict(err) ||
		apierrors.IsServerTimeout(err) ||
		apierrors.IsTimeout(err) ||
		apierrors.IsTooManyRequests(err) ||
		apierrors.IsServiceUnavailable(err) ||
		apierrors.IsInternalError(err)
}
