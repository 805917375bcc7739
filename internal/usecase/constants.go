package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultStatementCacheTTL bounds how long a statement summary stays cached.
	DefaultStatementCacheTTL = 5 * time.Minute

	// reconcileBatchSize is the page size used when sweeping all accounts.
	reconcileBatchSize = 500
)

// Operation names used in logs and metrics.
const (
	OpApply     = "apply"
	OpAmend     = "amend"
	OpRemove    = "remove"
	OpList      = "list"
	OpReconcile = "reconcile"
)
