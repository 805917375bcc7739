package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expense"

// Metrics holds all Prometheus metrics. It implements usecase.MetricsRecorder.
type Metrics struct {
	// Ledger metrics
	LedgerOperations  *prometheus.CounterVec
	LedgerDuration    *prometheus.HistogramVec
	ConsistencyErrors *prometheus.CounterVec
	Reconciliations   *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
	GRPCRequests *prometheus.CounterVec
	GRPCDuration *prometheus.HistogramVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. Pass prometheus.DefaultRegisterer
// to expose them on the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Ledger engine operations by operation and error kind",
			},
			[]string{"operation", "kind"},
		),
		LedgerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_operation_duration_seconds",
				Help:      "Duration of ledger engine operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		ConsistencyErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_consistency_errors_total",
				Help:      "Operations whose entry and balance writes may have diverged",
			},
			[]string{"operation"},
		),
		Reconciliations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_reconciliations_total",
				Help:      "Account reconciliations by whether drift was found",
			},
			[]string{"drift"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		GRPCRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_requests_total",
				Help:      "Total gRPC requests",
			},
			[]string{"method", "code"},
		),
		GRPCDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grpc_request_duration_seconds",
				Help:      "gRPC request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_events_published_total",
				Help:      "Outbox events published by event type",
			},
			[]string{"event_type"},
		),
		EventsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_events_failed_total",
				Help:      "Outbox events that failed to publish by event type",
			},
			[]string{"event_type"},
		),
	}
}

// RecordOperation counts one engine operation and observes its duration.
func (m *Metrics) RecordOperation(op, kind string, d time.Duration) {
	m.LedgerOperations.WithLabelValues(op, kind).Inc()
	m.LedgerDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordConsistencyError counts an operation that left the account needing reconciliation.
func (m *Metrics) RecordConsistencyError(op string) {
	m.ConsistencyErrors.WithLabelValues(op).Inc()
}

// RecordReconciliation counts one reconciliation pass over an account.
func (m *Metrics) RecordReconciliation(drift bool) {
	m.Reconciliations.WithLabelValues(strconv.FormatBool(drift)).Inc()
}

// ObserveHTTP records one completed HTTP request.
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveGRPC records one completed gRPC call.
func (m *Metrics) ObserveGRPC(method, code string, d time.Duration) {
	m.GRPCRequests.WithLabelValues(method, code).Inc()
	m.GRPCDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordPublish counts one outbox publish attempt.
func (m *Metrics) RecordPublish(eventType string, err error) {
	if err != nil {
		m.EventsFailed.WithLabelValues(eventType).Inc()
		return
	}
	m.EventsPublished.WithLabelValues(eventType).Inc()
}
