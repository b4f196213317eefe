package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	domainerrors "yieldvault.backend/internal/domain/errors"
)

const namespace = "yieldvault"

// Ledger records engine and scheduler activity
type Ledger struct {
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	payoutRuns   prometheus.Counter
	payouts      *prometheus.CounterVec
	notifyErrors prometheus.Counter
}

// NewLedger registers the ledger collectors on reg
func NewLedger(reg prometheus.Registerer) *Ledger {
	m := &Ledger{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by name and outcome code.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Wall time of ledger units of work, retries included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		payoutRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "runs_total",
			Help:      "Payout scheduler ticks.",
		}),
		payouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "investments_total",
			Help:      "Investments processed by the payout scheduler by result.",
		}, []string{"result"}),
		notifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "errors_total",
			Help:      "Ledger events that could not be delivered.",
		}),
	}
	reg.MustRegister(m.operations, m.duration, m.payoutRuns, m.payouts, m.notifyErrors)
	return m
}

// ObserveOperation counts one engine call and its latency. A nil receiver is a no-op.
func (m *Ledger) ObserveOperation(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Ledger) PayoutRun() {
	if m == nil {
		return
	}
	m.payoutRuns.Inc()
}

func (m *Ledger) PayoutResult(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.payouts.WithLabelValues(result).Inc()
}

func (m *Ledger) NotifyFailed() {
	if m == nil {
		return
	}
	m.notifyErrors.Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domainerrors.FromDomain(err).Code
}
