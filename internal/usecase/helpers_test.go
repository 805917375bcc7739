package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VineetPaun/expense-management/internal/adapter/repository/memory"
	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

const owner = "user-1"

type seqIDs struct{ n atomic.Int64 }

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("id-%06d", g.n.Add(1))
}

// tickClock advances one second per reading so timestamps are distinct and ordered.
type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickClock() *tickClock {
	return &tickClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type ledger struct {
	store      *memory.Store
	accounts   *memory.AccountRepository
	entries    *memory.EntryRepository
	audit      *memory.AuditRepository
	outbox     *memory.OutboxRepository
	txManager  *memory.TxManager
	locker     *usecase.AccountLocker
	accountUC  *usecase.AccountUseCase
	engine     *usecase.EntryUseCase
	reconciler *usecase.ReconciliationUseCase
}

func newLedger(t *testing.T, opts ...usecase.Option) *ledger {
	t.Helper()

	store := memory.NewStore()
	l := &ledger{
		store:     store,
		accounts:  memory.NewAccountRepository(store),
		entries:   memory.NewEntryRepository(store),
		audit:     memory.NewAuditRepository(store),
		outbox:    memory.NewOutboxRepository(store),
		txManager: memory.NewTxManager(store),
		locker:    usecase.NewAccountLocker(),
	}

	clock := newTickClock()
	ids := &seqIDs{}
	opts = append([]usecase.Option{
		usecase.WithAudit(l.audit),
		usecase.WithOutbox(l.outbox),
		usecase.WithClock(clock.Now),
	}, opts...)

	l.accountUC = usecase.NewAccountUseCase(l.txManager, l.accounts, ids, l.locker, opts...)
	l.reconciler = usecase.NewReconciliationUseCase(l.txManager, l.accounts, l.entries,
		memory.NewLedgerRepository(store), ids, l.locker, opts...)
	l.engine = usecase.NewEntryUseCase(l.txManager, l.accounts, l.entries, ids, l.locker, l.reconciler, opts...)

	return l
}

func (l *ledger) open(t *testing.T, balance string) *domain.Account {
	t.Helper()
	a, err := l.accountUC.OpenAccount(context.Background(), usecase.OpenAccountInput{
		UserID:         owner,
		BankName:       string(domain.BankHDFC),
		AccountNumber:  "50100123456789",
		InitialBalance: decimal.RequireFromString(balance),
	})
	require.NoError(t, err)
	return a
}

func (l *ledger) apply(accountID string, direction domain.Direction, amount string) (*domain.Entry, error) {
	category := "Salary"
	if direction == domain.DirectionDebit {
		category = "Groceries"
	}
	return l.engine.Apply(context.Background(), usecase.ApplyEntryInput{
		AccountID: accountID,
		UserID:    owner,
		Amount:    decimal.RequireFromString(amount),
		Direction: string(direction),
		Category:  category,
	})
}

func (l *ledger) mustApply(t *testing.T, accountID string, direction domain.Direction, amount string) *domain.Entry {
	t.Helper()
	e, err := l.apply(accountID, direction, amount)
	require.NoError(t, err)
	return e
}

func (l *ledger) balance(t *testing.T, accountID string) string {
	t.Helper()
	a, err := l.accounts.GetByID(context.Background(), accountID)
	require.NoError(t, err)
	return a.Balance.StringFixed(domain.AmountScale)
}

// requireConsistent checks every ledger invariant for the account: entries chain from
// the opening balance, each entry's arithmetic holds, the final balance is non-negative and the
// balance equals the last closing balance.
func (l *ledger) requireConsistent(t *testing.T, accountID string) {
	t.Helper()
	ctx := context.Background()

	a, err := l.accounts.GetByID(ctx, accountID)
	require.NoError(t, err)

	entries, err := l.entries.ListByAccount(ctx, accountID)
	require.NoError(t, err)

	running := a.OpeningBalance
	for _, e := range entries {
		require.NoError(t, e.CheckArithmetic())
		assert.Truef(t, e.OpeningBalance.Equal(running), "entry %s opens at %s, want %s", e.ID, e.OpeningBalance, running)
		running = e.ClosingBalance
	}

	assert.Truef(t, a.Balance.Equal(running), "balance %s, last closing %s", a.Balance, running)
	assert.False(t, a.Balance.IsNegative())
}

func ptr[T any](v T) *T { return &v }
