package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Metrics provides observability for the attorney module.
// Tracks lifecycle transitions, operation latency and role-check outcomes.
type Metrics struct {
	Lifecycle         *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	AccessChecks      *prometheus.CounterVec
	OrphanedAccounts  prometheus.Counter
}

// New registers the attorney metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Lifecycle: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attorney_lifecycle_total",
			Help: "Attorney lifecycle transitions by event",
		}, []string{"event"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attorney_operation_duration_seconds",
			Help:    "Duration of attorney service operations, including identity provider calls",
			Buckets: durationBuckets,
		}, []string{"operation"}),
		AccessChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attorney_access_checks_total",
			Help: "Role-check outcomes: allowed, denied, invalid or error",
		}, []string{"outcome"}),
		OrphanedAccounts: f.NewCounter(prometheus.CounterOpts{
			Name: "attorney_orphaned_identity_accounts_total",
			Help: "Identity accounts created whose attorney record failed to persist",
		}),
	}
}

// IncrementLifecycle records a committed lifecycle transition.
func (m *Metrics) IncrementLifecycle(event string) {
	if m == nil {
		return
	}
	m.Lifecycle.WithLabelValues(event).Inc()
}

// ObserveOperation records the duration of a service operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementAccessCheck(outcome string) {
	if m == nil {
		return
	}
	m.AccessChecks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementOrphanedAccount() {
	if m == nil {
		return
	}
	m.OrphanedAccounts.Inc()
}
