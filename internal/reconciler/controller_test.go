package reconciler_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"tedep/internal/cluster/clustertest"
	"tedep/internal/config"
	"tedep/internal/reconciler"
	tedepv1 "tedep/pkg/apis/tedep/v1"
)

const testNamespace = "default"

func newCluster(t *testing.T, objs ...client.Object) *clustertest.Cluster {
	t.Helper()
	c := fake.NewClientBuilder().
		WithScheme(reconciler.NewTestScheme(true)).
		WithObjects(append([]client.Object{reconciler.NewTestNamespace(testNamespace)}, objs...)...).
		Build()
	return clustertest.New(c)
}

// startController starts the controller and runs its task until the test ends.
func startController(t *testing.T, cl *clustertest.Cluster, ctrl *reconciler.Controller[*tedepv1.TerraformWorkspace]) {
	t.Helper()
	startControllerIn(t, cl, ctrl, testNamespace)
}

func startControllerIn(t *testing.T, cl *clustertest.Cluster, ctrl *reconciler.Controller[*tedepv1.TerraformWorkspace], namespace string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	task, err := ctrl.Start(ctx, cl, namespace)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- task(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("controller did not stop")
		}
	})
}

func getWorkspace(t *testing.T, cl *clustertest.Cluster, name string) (*tedepv1.TerraformWorkspace, error) {
	t.Helper()
	ws := &tedepv1.TerraformWorkspace{}
	err := cl.Client().Get(context.Background(), client.ObjectKey{Namespace: testNamespace, Name: name}, ws)
	return ws, err
}

func TestController_AppliesAndCleansUp(t *testing.T) {
	cl := newCluster(t, reconciler.NewTestWorkspace(testNamespace, "test-resource"))
	handler := &reconciler.RecordingHandler{
		Finalizer:     reconciler.TestFinalizer,
		ApplyAction:   reconciler.RequeueAfter(60 * time.Second),
		CleanupAction: reconciler.AwaitChange(),
	}
	ctrl := reconciler.NewController(reconciler.NewTestWorkspaceObject, config.GetDefaultConfig(), reconciler.Config{Name: "test"}, handler)
	startController(t, cl, ctrl)

	require.Eventually(t, func() bool {
		applies, _, _ := handler.Counts()
		return applies == 1
	}, 2*time.Second, 10*time.Millisecond)

	ws, err := getWorkspace(t, cl, "test-resource")
	require.NoError(t, err)
	assert.Equal(t, []string{reconciler.TestFinalizer}, ws.Finalizers)

	// The next reconcile is a minute away.
	time.Sleep(100 * time.Millisecond)
	applies, cleanups, policies := handler.Counts()
	assert.Equal(t, 1, applies)
	assert.Zero(t, cleanups)
	assert.Zero(t, policies)

	require.NoError(t, cl.Delete(context.Background(), ws))

	require.Eventually(t, func() bool {
		_, err := getWorkspace(t, cl, "test-resource")
		return apierrors.IsNotFound(err)
	}, 2*time.Second, 10*time.Millisecond)

	_, cleanups, _ = handler.Counts()
	assert.Equal(t, 1, cleanups)

	require.Eventually(t, func() bool {
		return ctrl.Metrics(testNamespace).Summary().Cleanups == 1
	}, 2*time.Second, 10*time.Millisecond)
	summary := ctrl.Metrics(testNamespace).Summary()
	assert.Equal(t, int64(1), summary.FinalizersAdded)
	assert.Equal(t, int64(1), summary.FinalizersRemoved)
	assert.Equal(t, int64(1), summary.Applies)
	assert.Equal(t, int64(1), summary.Cleanups)
}

func TestController_NewObjectsAreReconciled(t *testing.T) {
	cl := newCluster(t)
	handler := &reconciler.RecordingHandler{
		Finalizer:   reconciler.TestFinalizer,
		ApplyAction: reconciler.AwaitChange(),
	}
	ctrl := reconciler.NewController(reconciler.NewTestWorkspaceObject, config.GetDefaultConfig(), reconciler.Config{Name: "test"}, handler)
	startController(t, cl, ctrl)

	require.Eventually(t, func() bool { return cl.ActiveWatches() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, cl.Create(context.Background(), reconciler.NewTestWorkspace(testNamespace, "late")))

	require.Eventually(t, func() bool {
		applies, _, _ := handler.Counts()
		return applies == 1
	}, 2*time.Second, 10*time.Millisecond)

	ws, err := getWorkspace(t, cl, "late")
	require.NoError(t, err)
	assert.Contains(t, ws.Finalizers, reconciler.TestFinalizer)
}

func TestController_RetriesAfterFailure(t *testing.T) {
	cl := newCluster(t, reconciler.NewTestWorkspace(testNamespace, "flaky"))
	handler := &reconciler.RecordingHandler{
		Finalizer:   reconciler.TestFinalizer,
		ApplyAction: reconciler.AwaitChange(),
		ApplyErrs:   []error{errors.New("backend unavailable")},
	}
	cfg := reconciler.Config{Name: "test", RetryInterval: 50 * time.Millisecond}
	ctrl := reconciler.NewController(reconciler.NewTestWorkspaceObject, config.GetDefaultConfig(), cfg, handler)
	startController(t, cl, ctrl)

	require.Eventually(t, func() bool {
		applies, _, _ := handler.Counts()
		return applies == 2
	}, 2*time.Second, 10*time.Millisecond)

	_, _, policies := handler.Counts()
	assert.Equal(t, 1, policies)

	action, ok := handler.LastPolicyAction()
	require.True(t, ok)
	assert.Equal(t, reconciler.RequeueAfter(50*time.Millisecond), action)

	var fe *reconciler.FinalizerError
	require.ErrorAs(t, handler.PolicyErrors[0], &fe)
	assert.True(t, fe.IsHandlerError())

	require.Eventually(t, func() bool {
		return ctrl.Metrics(testNamespace).Summary().Applies == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), ctrl.Metrics(testNamespace).Summary().Failures)
}

func TestController_MetricsPerNamespace(t *testing.T) {
	cl := newCluster(t,
		reconciler.NewTestNamespace("other"),
		reconciler.NewTestWorkspace(testNamespace, "a"),
		reconciler.NewTestWorkspace(testNamespace, "b"),
		reconciler.NewTestWorkspace("other", "c"),
	)
	handler := &reconciler.RecordingHandler{
		Finalizer:   reconciler.TestFinalizer,
		ApplyAction: reconciler.AwaitChange(),
	}
	ctrl := reconciler.NewController(reconciler.NewTestWorkspaceObject, config.GetDefaultConfig(), reconciler.Config{Name: "test"}, handler)
	startControllerIn(t, cl, ctrl, testNamespace)
	startControllerIn(t, cl, ctrl, "other")

	require.Eventually(t, func() bool {
		return ctrl.Metrics(testNamespace).Summary().Applies == 2 && ctrl.Metrics("other").Summary().Applies == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.NotSame(t, ctrl.Metrics(testNamespace), ctrl.Metrics("other"))
	assert.Equal(t, "other", ctrl.Metrics("other").Summary().Namespace)
	assert.Equal(t, int64(1), ctrl.Metrics("other").Summary().FinalizersAdded)
}

func TestController_PreflightFailureStartsNoWatch(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(reconciler.NewTestScheme(true)).Build()
	cl := clustertest.New(c)
	handler := &reconciler.RecordingHandler{Finalizer: reconciler.TestFinalizer}
	ctrl := reconciler.NewController(reconciler.NewTestWorkspaceObject, config.GetDefaultConfig(), reconciler.Config{Name: "test"}, handler)

	task, err := ctrl.Start(context.Background(), cl, "missing")
	require.Error(t, err)
	assert.Nil(t, task)

	var ce *reconciler.ControllerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "test", ce.Controller)
	assert.Equal(t, "missing", ce.Namespace)
	reason, ok := ce.PreflightReason()
	require.True(t, ok)
	assert.Equal(t, reconciler.ReasonNamespaceNotFound, reason)

	assert.Zero(t, cl.WatchesStarted())
}

func TestController_EmptyFinalizerIsRejected(t *testing.T) {
	cl := newCluster(t)
	handler := &reconciler.RecordingHandler{}
	ctrl := reconciler.NewController(reconciler.NewTestWorkspaceObject, config.GetDefaultConfig(), reconciler.Config{Name: "test"}, handler)

	_, err := ctrl.Start(context.Background(), cl, testNamespace)
	var ce *reconciler.ControllerError
	require.ErrorAs(t, err, &ce)
	assert.Zero(t, cl.WatchesStarted())
}

func TestController_CancelStopsWatch(t *testing.T) {
	cl := newCluster(t)
	handler := &reconciler.RecordingHandler{Finalizer: reconciler.TestFinalizer}
	ctrl := reconciler.NewController(reconciler.NewTestWorkspaceObject, config.GetDefaultConfig(), reconciler.Config{Name: "test"}, handler)

	ctx, cancel := context.WithCancel(context.Background())
	task, err := ctrl.Start(ctx, cl, testNamespace)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- task(ctx) }()

	require.Eventually(t, func() bool { return cl.ActiveWatches() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("controller did not stop")
	}
	assert.Zero(t, cl.ActiveWatches())
}

func TestController_WatchErrorEndsTask(t *testing.T) {
	cl := newCluster(t)
	cl.WatchErr = errors.New("connection refused")
	handler := &reconciler.RecordingHandler{Finalizer: reconciler.TestFinalizer}
	ctrl := reconciler.NewController(reconciler.NewTestWorkspaceObject, config.GetDefaultConfig(), reconciler.Config{Name: "test"}, handler)

	task, err := ctrl.Start(context.Background(), cl, testNamespace)
	require.NoError(t, err)

	err = task(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

// slowHandler tracks how many Apply calls overlap.
type slowHandler struct {
	current atomic.Int32
	peak    atomic.Int32
	applied atomic.Int32
}

func (h *slowHandler) FinalizerName() string {
	return reconciler.TestFinalizer
}

func (h *slowHandler) Apply(context.Context, *tedepv1.TerraformWorkspace, *reconciler.Context) (reconciler.Action, error) {
	n := h.current.Add(1)
	for {
		p := h.peak.Load()
		if n <= p || h.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(30 * time.Millisecond)
	h.current.Add(-1)
	h.applied.Add(1)
	return reconciler.AwaitChange(), nil
}

func (h *slowHandler) Cleanup(context.Context, *tedepv1.TerraformWorkspace, *reconciler.Context) (reconciler.Action, error) {
	return reconciler.AwaitChange(), nil
}

func (h *slowHandler) ErrorPolicy(ctx context.Context, key client.ObjectKey, err error, rctx *reconciler.Context) reconciler.Action {
	return reconciler.DefaultErrorPolicy(ctx, key, err, rctx)
}

func TestController_MaxConcurrentReconciles(t *testing.T) {
	var objs []client.Object
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		objs = append(objs, reconciler.NewTestWorkspace(testNamespace, name))
	}
	cl := newCluster(t, objs...)
	handler := &slowHandler{}
	cfg := reconciler.Config{Name: "test", MaxConcurrentReconciles: 2}
	ctrl := reconciler.NewController(reconciler.NewTestWorkspaceObject, config.GetDefaultConfig(), cfg, handler)
	startController(t, cl, ctrl)

	require.Eventually(t, func() bool { return handler.applied.Load() == 6 }, 5*time.Second, 10*time.Millisecond)
	assert.LessOrEqual(t, handler.peak.Load(), int32(2))
	assert.GreaterOrEqual(t, handler.peak.Load(), int32(1))
}

func TestController_HandlerFunc(t *testing.T) {
	cl := newCluster(t, reconciler.NewTestWorkspace(testNamespace, "fn"))

	var mu sync.Mutex
	var seen []string
	handler := reconciler.HandlerFunc[*tedepv1.TerraformWorkspace]{
		Finalizer: reconciler.TestFinalizer,
		Fn: func(_ context.Context, ws *tedepv1.TerraformWorkspace) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, ws.Name)
			return nil
		},
	}
	ctrl := reconciler.NewController(reconciler.NewTestWorkspaceObject, config.GetDefaultConfig(), reconciler.Config{Name: "fn"}, handler)
	startController(t, cl, ctrl)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "fn", ctrl.Name())
}
