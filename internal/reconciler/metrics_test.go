package reconciler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordReconcile(t *testing.T) {
	m := NewMetrics("metrics-record", "infra")

	m.RecordReconcile(ResultApply, 10*time.Millisecond)
	m.RecordReconcile(ResultApply, 10*time.Millisecond)
	m.RecordReconcile(ResultCleanup, time.Millisecond)
	m.RecordReconcile(ResultSkipped, time.Millisecond)
	m.RecordReconcile(ResultError, time.Millisecond)

	s := m.Summary()
	assert.Equal(t, "metrics-record", s.Controller)
	assert.Equal(t, "infra", s.Namespace)
	assert.Equal(t, int64(5), s.ReconcileAttempts)
	assert.Equal(t, int64(2), s.Applies)
	assert.Equal(t, int64(1), s.Cleanups)
	assert.Equal(t, int64(1), s.Skipped)
	assert.Equal(t, int64(1), s.Failures)
	assert.InDelta(t, 0.2, s.ReconcileFailureRate, 0.0001)
	assert.False(t, s.LastSuccessAt.IsZero())
	assert.False(t, s.LastFailureAt.IsZero())

	assert.Equal(t, float64(2), testutil.ToFloat64(reconcileTotal.WithLabelValues("metrics-record", "infra", ResultApply)))
	assert.Equal(t, float64(1), testutil.ToFloat64(reconcileTotal.WithLabelValues("metrics-record", "infra", ResultError)))
}

func TestMetrics_RecordFinalizerPatch(t *testing.T) {
	m := NewMetrics("metrics-finalizer", "infra")

	m.RecordFinalizerPatch(OpAddFinalizer)
	m.RecordFinalizerPatch(OpRemoveFinalizer)
	m.RecordFinalizerPatch(OpRemoveFinalizer)

	s := m.Summary()
	assert.Equal(t, int64(1), s.FinalizersAdded)
	assert.Equal(t, int64(2), s.FinalizersRemoved)
	assert.Equal(t, float64(2), testutil.ToFloat64(finalizerPatchesTotal.WithLabelValues("metrics-finalizer", "infra", string(OpRemoveFinalizer))))
}

func TestMetrics_SeparateNamespaces(t *testing.T) {
	infra := NewMetrics("metrics-ns", "infra")
	apps := NewMetrics("metrics-ns", "apps")

	infra.RecordReconcile(ResultApply, time.Millisecond)
	infra.RecordReconcile(ResultApply, time.Millisecond)
	apps.RecordReconcile(ResultApply, time.Millisecond)
	apps.RecordFinalizerPatch(OpAddFinalizer)

	assert.Equal(t, int64(2), infra.Summary().Applies)
	assert.Equal(t, int64(1), apps.Summary().Applies)
	assert.Equal(t, float64(2), testutil.ToFloat64(reconcileTotal.WithLabelValues("metrics-ns", "infra", ResultApply)))
	assert.Equal(t, float64(1), testutil.ToFloat64(reconcileTotal.WithLabelValues("metrics-ns", "apps", ResultApply)))
	assert.Equal(t, float64(0), testutil.ToFloat64(finalizerPatchesTotal.WithLabelValues("metrics-ns", "infra", string(OpAddFinalizer))))
	assert.Equal(t, float64(1), testutil.ToFloat64(finalizerPatchesTotal.WithLabelValues("metrics-ns", "apps", string(OpAddFinalizer))))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordReconcile(ResultApply, time.Second)
		m.RecordFinalizerPatch(OpAddFinalizer)
	})
}

func TestMetrics_SummaryJSON(t *testing.T) {
	m := NewMetrics("metrics-json", "infra")
	m.RecordReconcile(ResultApply, time.Millisecond)

	data, err := json.Marshal(m.Summary())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "metrics-json", decoded["controller"])
	assert.Equal(t, "infra", decoded["namespace"])
	assert.Equal(t, float64(1), decoded["applies"])
	assert.Equal(t, float64(0), decoded["reconcile_failure_rate"])
}
