package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VineetPaun/expense-management/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	// UpdateBalance writes balance and bumps the version to expectedVersion+1. It returns
	// domain.ErrConcurrentUpdate when the stored version is not expectedVersion.
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error
	UpdateDetails(ctx context.Context, tx Transaction, account *domain.Account) error
	Deactivate(ctx context.Context, tx Transaction, id string, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID string, includeInactive bool) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Entry, error)
	Update(ctx context.Context, tx Transaction, entry *domain.Entry) error
	Delete(ctx context.Context, tx Transaction, id string) error
	// ShiftAfter adds delta to both snapshots of every entry of the account applied after
	// sequence.
	ShiftAfter(ctx context.Context, tx Transaction, accountID string, sequence int64, delta decimal.Decimal) error
	List(ctx context.Context, accountID string, filter domain.EntryFilter, sort domain.EntrySort, page domain.PageRequest) ([]*domain.Entry, error)
	Summarize(ctx context.Context, accountID string, filter domain.EntryFilter) (domain.EntrySummary, error)
	// ListByAccount returns every entry of the account in application order.
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Entry, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// MetricsRecorder receives ledger measurements.
type MetricsRecorder interface {
	RecordOperation(op, kind string, d time.Duration)
	RecordConsistencyError(op string)
	RecordReconciliation(drift bool)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	// CheckConsistency returns the sum of all account balances and the sum the entries
	// imply (opening balances plus every entry's effect).
	CheckConsistency(ctx context.Context) (totalBalance, expectedBalance decimal.Decimal, err error)
}
