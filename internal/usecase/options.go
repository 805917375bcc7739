package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/VineetPaun/expense-management/internal/domain"
)

// Option configures the optional collaborators of a use case.
type Option func(*options)

type options struct {
	retrier  Retrier
	audit    AuditRepository
	outbox   OutboxRepository
	cache    Cache
	cacheTTL time.Duration
	metrics  MetricsRecorder
	logger   zerolog.Logger
	now      func() time.Time
}

func newOptions(opts []Option) options {
	o := options{
		retrier:  noRetry{},
		cacheTTL: DefaultStatementCacheTTL,
		metrics:  NopMetrics{},
		logger:   zerolog.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithRetrier re-runs storage transactions that fail with a transient conflict.
func WithRetrier(r Retrier) Option {
	return func(o *options) {
		if r != nil {
			o.retrier = r
		}
	}
}

// WithAudit writes an audit record inside every mutating transaction.
func WithAudit(repo AuditRepository) Option {
	return func(o *options) { o.audit = repo }
}

// WithOutbox writes an outbox event inside every mutating transaction.
func WithOutbox(repo OutboxRepository) Option {
	return func(o *options) { o.outbox = repo }
}

// WithStatementCache caches statement summaries.
func WithStatementCache(c Cache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = c
		if ttl > 0 {
			o.cacheTTL = ttl
		}
	}
}

// WithMetrics records operation outcomes.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithLogger sets the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// record writes the audit log and outbox event of a mutation inside tx. Either may be nil.
func (o *options) record(ctx context.Context, tx Transaction, log *domain.AuditLog, event *domain.OutboxEvent) error {
	if o.audit != nil && log != nil {
		log.RequestID = RequestIDFromContext(ctx)
		if err := o.audit.CreateTx(ctx, tx, log); err != nil {
			return err
		}
	}
	if o.outbox != nil && event != nil {
		if err := o.outbox.Create(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}

// NopMetrics discards measurements.
type NopMetrics struct{}

func (NopMetrics) RecordOperation(string, string, time.Duration) {}
func (NopMetrics) RecordConsistencyError(string)                 {}
func (NopMetrics) RecordReconciliation(bool)                     {}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error { return operation() }

type requestIDKey struct{}

// WithRequestID attaches the request id recorded in audit logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id, or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
