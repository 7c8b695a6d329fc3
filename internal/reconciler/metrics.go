package reconciler

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"tedep/pkg/logging"
)

func init() {
	metrics.Registry.MustRegister(
		reconcileTotal,
		reconcileDurationSeconds,
		finalizerPatchesTotal,
	)
}

// Reconcile results used as the "result" label.
const (
	ResultApply   = "apply"
	ResultCleanup = "cleanup"
	ResultSkipped = "skipped"
	ResultError   = "error"
)

var (
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tedep_reconcile_total",
			Help: "Total number of reconciles per controller, namespace and result",
		},
		[]string{"controller", "namespace", "result"},
	)

	reconcileDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tedep_reconcile_duration_seconds",
			Help:    "Duration of reconciles in seconds per controller and namespace",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"controller", "namespace"},
	)

	finalizerPatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tedep_finalizer_patches_total",
			Help: "Total number of finalizer patches per controller, namespace and operation",
		},
		[]string{"controller", "namespace", "op"},
	)
)

// Metrics tracks reconciliation activity of a single controller in one
// namespace.
//
// Every record is mirrored into the Prometheus collectors on the
// controller-runtime registry; the in-memory counters back the JSON summary
// served on the root HTTP endpoint.
type Metrics struct {
	mu sync.RWMutex

	controller string
	namespace  string

	reconcileAttempts int64
	applies           int64
	cleanups          int64
	skipped           int64
	failures          int64
	finalizersAdded   int64
	finalizersRemoved int64
	lastReconcileAt   time.Time
	lastSuccessAt     time.Time
	lastFailureAt     time.Time
}

// NewMetrics creates the metrics of the named controller in namespace.
func NewMetrics(controller, namespace string) *Metrics {
	return &Metrics{controller: controller, namespace: namespace}
}

// RecordReconcile records the outcome of one reconcile. result is one of
// the Result constants.
func (m *Metrics) RecordReconcile(result string, duration time.Duration) {
	if m == nil {
		return
	}

	m.mu.Lock()
	now := time.Now()
	m.reconcileAttempts++
	m.lastReconcileAt = now
	switch result {
	case ResultApply:
		m.applies++
		m.lastSuccessAt = now
	case ResultCleanup:
		m.cleanups++
		m.lastSuccessAt = now
	case ResultSkipped:
		m.skipped++
		m.lastSuccessAt = now
	case ResultError:
		m.failures++
		m.lastFailureAt = now
	}
	failures := m.failures
	m.mu.Unlock()

	reconcileTotal.WithLabelValues(m.controller, m.namespace, result).Inc()
	reconcileDurationSeconds.WithLabelValues(m.controller, m.namespace).Observe(duration.Seconds())

	if result == ResultError {
		logging.Debug("ReconcilerMetrics", "Reconcile failure for %s in %s (failures: %d)", m.controller, m.namespace, failures)
	}
}

// RecordFinalizerPatch records a successful finalizer add or remove.
func (m *Metrics) RecordFinalizerPatch(op FinalizerOp) {
	if m == nil {
		return
	}

	m.mu.Lock()
	switch op {
	case OpAddFinalizer:
		m.finalizersAdded++
	case OpRemoveFinalizer:
		m.finalizersRemoved++
	}
	m.mu.Unlock()

	finalizerPatchesTotal.WithLabelValues(m.controller, m.namespace, string(op)).Inc()
}

// MetricsSummary provides a read-only view of a controller's metrics.
type MetricsSummary struct {
	Controller           string    `json:"controller"`
	Namespace            string    `json:"namespace"`
	ReconcileAttempts    int64     `json:"reconcile_attempts"`
	Applies              int64     `json:"applies"`
	Cleanups             int64     `json:"cleanups"`
	Skipped              int64     `json:"skipped"`
	Failures             int64     `json:"failures"`
	FinalizersAdded      int64     `json:"finalizers_added"`
	FinalizersRemoved    int64     `json:"finalizers_removed"`
	ReconcileFailureRate float64   `json:"reconcile_failure_rate"`
	LastReconcileAt      time.Time `json:"last_reconcile_at,omitempty"`
	LastSuccessAt        time.Time `json:"last_success_at,omitempty"`
	LastFailureAt        time.Time `json:"last_failure_at,omitempty"`
}

// Summary returns a snapshot of the metrics.
func (m *Metrics) Summary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := MetricsSummary{
		Controller:        m.controller,
		Namespace:         m.namespace,
		ReconcileAttempts: m.reconcileAttempts,
		Applies:           m.applies,
		Cleanups:          m.cleanups,
		Skipped:           m.skipped,
		Failures:          m.failures,
		FinalizersAdded:   m.finalizersAdded,
		FinalizersRemoved: m.finalizersRemoved,
		LastReconcileAt:   m.lastReconcileAt,
		LastSuccessAt:     m.lastSuccessAt,
		LastFailureAt:     m.lastFailureAt,
	}
	if m.reconcileAttempts > 0 {
		summary.ReconcileFailureRate = float64(m.failures) / float64(m.reconcileAttempts)
	}
	return summary
}
