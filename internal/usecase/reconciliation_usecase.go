package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VineetPaun/expense-management/internal/domain"
)

// ReconciliationUseCase handles balance reconciliation operations
type ReconciliationUseCase struct {
	options
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	ledgerRepo  LedgerRepository
	idGen       IDGenerator
	locker      *AccountLocker
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	ledgerRepo LedgerRepository,
	idGen IDGenerator,
	locker *AccountLocker,
	opts ...Option,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		options:     newOptions(opts),
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		ledgerRepo:  ledgerRepo,
		idGen:       idGen,
		locker:      locker,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	// BrokenEntries lists entries whose snapshots do not chain from the previous entry.
	BrokenEntries []string
	EntryCount    int
	IsReconciled  bool
	Repaired      bool
	LastChecked   time.Time
}

// chain replays the account's entries from its opening balance and returns the
// recomputed snapshots of every entry that does not match.
func chain(account *domain.Account, entries []*domain.Entry) (decimal.Decimal, []*domain.Entry) {
	running := account.OpeningBalance
	var fixed []*domain.Entry

	for _, e := range entries {
		if !e.OpeningBalance.Equal(running) || e.CheckArithmetic() != nil {
			c := e.Clone()
			c.OpeningBalance = running
			c.ClosingBalance = running.Add(e.Effect())
			fixed = append(fixed, c)
		}
		running = running.Add(e.Effect())
	}

	return running, fixed
}

func (uc *ReconciliationUseCase) check(account *domain.Account, entries []*domain.Entry) (*ReconciliationResult, []*domain.Entry) {
	calculated, fixed := chain(account, entries)

	broken := make([]string, 0, len(fixed))
	for _, e := range fixed {
		broken = append(broken, e.ID)
	}

	return &ReconciliationResult{
		AccountID:         account.ID,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Difference:        account.Balance.Sub(calculated),
		BrokenEntries:     broken,
		EntryCount:        len(entries),
		IsReconciled:      account.Balance.Equal(calculated) && len(fixed) == 0,
		LastChecked:       uc.now(),
	}, fixed
}

// CheckAccount compares the recorded balance with the balance the entries imply, without
// changing anything.
func (uc *ReconciliationUseCase) CheckAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	result, _ := uc.check(account, entries)
	return result, nil
}

// ReconcileAccount recomputes the account's entry snapshots and balance from its opening
// balance and writes any correction.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	start := time.Now()
	unlock := uc.locker.Lock(accountID)
	defer unlock()

	var result *ReconciliationResult
	err := uc.retrier.Retry(ctx, func() error {
		var txErr error
		result, txErr = uc.reconcileTx(ctx, accountID)
		return txErr
	})

	uc.metrics.RecordOperation(OpReconcile, domain.Kind(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordReconciliation(result.Repaired)
	return result, nil
}

func (uc *ReconciliationUseCase) reconcileTx(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(txCtx)

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, accountID)
	if err != nil {
		return nil, err
	}

	// Every writer locks the account row first, so the entries cannot move under us.
	entries, err := uc.entryRepo.ListByAccount(txCtx, accountID)
	if err != nil {
		return nil, err
	}

	result, fixed := uc.check(account, entries)
	if result.IsReconciled {
		return result, nil
	}

	now := uc.now()
	for _, e := range fixed {
		e.UpdatedAt = now
		if err := uc.entryRepo.Update(txCtx, tx, e); err != nil {
			return nil, err
		}
	}

	if !account.Balance.Equal(result.CalculatedBalance) {
		if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, result.CalculatedBalance, account.Version, now); err != nil {
			return nil, err
		}
	}

	before := domain.AccountState(account)
	after := *account
	after.Balance = result.CalculatedBalance

	if err := uc.record(txCtx, tx,
		&domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       account.UserID,
			Action:       domain.AuditActionAccountReconcile,
			ResourceType: domain.AggregateTypeAccount,
			ResourceID:   account.ID,
			BeforeState:  before,
			AfterState:   domain.AccountState(&after),
			CreatedAt:    now,
		},
		domain.NewAccountEvent(uc.idGen.Generate(), domain.EventTypeAccountReconciled, &after, now),
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	result.Repaired = true
	if result.CalculatedBalance.IsNegative() {
		uc.logger.Error().Str("account_id", account.ID).Str("balance", result.CalculatedBalance.String()).
			Msg("reconciled balance is negative")
	}
	uc.logger.Warn().
		Str("account_id", account.ID).
		Str("recorded", result.RecordedBalance.String()).
		Str("calculated", result.CalculatedBalance.String()).
		Int("broken_entries", len(result.BrokenEntries)).
		Msg("account drift repaired")

	return result, nil
}

// ReconcileAll reconciles every account. It keeps going past failures and returns them
// joined.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) ([]*ReconciliationResult, error) {
	var (
		results []*ReconciliationResult
		errs    []error
	)

	err := uc.eachAccount(ctx, func(account *domain.Account) error {
		result, err := uc.ReconcileAccount(ctx, account.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err))
			return nil
		}
		results = append(results, result)
		return nil
	})
	if err != nil {
		return results, err
	}

	return results, errors.Join(errs...)
}

func (uc *ReconciliationUseCase) eachAccount(ctx context.Context, fn func(*domain.Account) error) error {
	for offset := 0; ; offset += reconcileBatchSize {
		accounts, err := uc.accountRepo.List(ctx, reconcileBatchSize, offset)
		if err != nil {
			return err
		}

		for _, account := range accounts {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(account); err != nil {
				return err
			}
		}

		if len(accounts) < reconcileBatchSize {
			return nil
		}
	}
}

// CheckLedgerConsistency verifies that account balances add up to what the entries imply
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	totalBalance, expected, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return err
	}

	if !totalBalance.Equal(expected) {
		return fmt.Errorf(
			"%w: balances=%s entries=%s difference=%s",
			domain.ErrConsistency,
			totalBalance.String(),
			expected.String(),
			totalBalance.Sub(expected).String(),
		)
	}

	return nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReconciliationReport checks every account and the ledger totals without
// repairing anything.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
	}

	err := uc.eachAccount(ctx, func(account *domain.Account) error {
		entries, err := uc.entryRepo.ListByAccount(ctx, account.ID)
		if err != nil {
			return err
		}

		result, _ := uc.check(account, entries)
		report.TotalAccounts++
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ledgerErr := uc.CheckLedgerConsistency(ctx)
	if ledgerErr != nil && !errors.Is(ledgerErr, domain.ErrConsistency) {
		return nil, ledgerErr
	}

	report.LedgerConsistent = ledgerErr == nil && len(report.Discrepancies) == 0
	report.CheckedAt = uc.now()

	return report, nil
}
