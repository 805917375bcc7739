package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VineetPaun/expense-management/internal/domain"
)

// EntryUseCase is the only code that changes account balances. Every mutation writes the
// entry and the account in one transaction while holding the account's lock.
type EntryUseCase struct {
	options
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	idGen       IDGenerator
	locker      *AccountLocker
	reconciler  *ReconciliationUseCase
}

// NewEntryUseCase creates a new EntryUseCase. reconciler may be nil, in which case
// consistency errors are only logged.
func NewEntryUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	locker *AccountLocker,
	reconciler *ReconciliationUseCase,
	opts ...Option,
) *EntryUseCase {
	return &EntryUseCase{
		options:     newOptions(opts),
		txManager:   txManager,
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
		locker:      locker,
		reconciler:  reconciler,
	}
}

// ApplyEntryInput represents input for applying an entry.
type ApplyEntryInput struct {
	AccountID   string
	UserID      string
	Amount      decimal.Decimal
	Direction   string
	Category    string
	Description string
	Reference   string
	EntryDate   *time.Time
}

// AmendEntryInput represents input for amending an entry. Nil optional fields keep
// their current value.
type AmendEntryInput struct {
	EntryID     string
	UserID      string
	Amount      decimal.Decimal
	Direction   string
	Category    string
	Description *string
	Reference   *string
	EntryDate   *time.Time
}

// RemoveResult is the outcome of removing an entry. AccountUpdated is false when the
// account no longer exists.
type RemoveResult struct {
	RemovedEntryID string
	NewBalance     decimal.Decimal
	AccountUpdated bool
}

// ListEntriesInput selects a page of an account's statement.
type ListEntriesInput struct {
	AccountID string
	UserID    string
	Filter    domain.EntryFilter
	Sort      domain.EntrySort
	Page      domain.PageRequest
}

// Apply records a new entry and moves the account balance by its effect.
func (uc *EntryUseCase) Apply(ctx context.Context, input ApplyEntryInput) (*domain.Entry, error) {
	start := time.Now()
	entry, err := uc.apply(ctx, input)
	uc.finish(ctx, OpApply, input.AccountID, start, err)
	return entry, err
}

func (uc *EntryUseCase) apply(ctx context.Context, input ApplyEntryInput) (*domain.Entry, error) {
	if strings.TrimSpace(input.AccountID) == "" {
		return nil, domain.NewValidationError("account_id", "account id is required")
	}

	direction, category, err := validateEntryFields(input.Amount, input.Direction, input.Category, input.Description, input.Reference)
	if err != nil {
		return nil, err
	}

	unlock := uc.locker.Lock(input.AccountID)
	defer unlock()

	var entry *domain.Entry
	err = uc.retrier.Retry(ctx, func() error {
		var txErr error
		entry, txErr = uc.applyTx(ctx, input, direction, category)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (uc *EntryUseCase) applyTx(ctx context.Context, input ApplyEntryInput, direction domain.Direction, category domain.Category) (*domain.Entry, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(txCtx)

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := checkWritable(account, input.UserID); err != nil {
		return nil, err
	}

	closing, err := account.ApplyDirection(direction, input.Amount)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	entryDate := now
	if input.EntryDate != nil {
		entryDate = input.EntryDate.UTC()
	}

	entry := &domain.Entry{
		ID:             uc.idGen.Generate(),
		UserID:         input.UserID,
		AccountID:      account.ID,
		Sequence:       account.Version + 1,
		Amount:         input.Amount,
		Direction:      direction,
		Category:       category,
		Description:    strings.TrimSpace(input.Description),
		Reference:      strings.TrimSpace(input.Reference),
		OpeningBalance: account.Balance,
		ClosingBalance: closing,
		EntryDate:      entryDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.entryRepo.Create(txCtx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, closing, account.Version, now); err != nil {
		return nil, err
	}

	if err := uc.record(txCtx, tx,
		&domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       input.UserID,
			Action:       domain.AuditActionEntryCreate,
			ResourceType: domain.AggregateTypeEntry,
			ResourceID:   entry.ID,
			AfterState:   domain.EntryState(entry),
			CreatedAt:    now,
		},
		domain.NewEntryEvent(uc.idGen.Generate(), domain.EventTypeEntryCreated, entry, closing.StringFixed(domain.AmountScale), now),
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, &domain.ConsistencyError{Op: OpApply, AccountID: account.ID, EntryID: entry.ID, Err: err}
	}

	return entry, nil
}

// Amend replaces an entry's amount, direction and category. The old effect is undone and
// the new one applied against the current balance; entries applied after it are
// re-chained by the difference.
func (uc *EntryUseCase) Amend(ctx context.Context, input AmendEntryInput) (*domain.Entry, error) {
	start := time.Now()
	entry, accountID, err := uc.amend(ctx, input)
	uc.finish(ctx, OpAmend, accountID, start, err)
	return entry, err
}

func (uc *EntryUseCase) amend(ctx context.Context, input AmendEntryInput) (*domain.Entry, string, error) {
	description, reference := "", ""
	if input.Description != nil {
		description = *input.Description
	}
	if input.Reference != nil {
		reference = *input.Reference
	}

	direction, category, err := validateEntryFields(input.Amount, input.Direction, input.Category, description, reference)
	if err != nil {
		return nil, "", err
	}

	existing, err := uc.GetEntry(ctx, input.EntryID, input.UserID)
	if err != nil {
		return nil, "", err
	}

	accountID := existing.AccountID
	unlock := uc.locker.Lock(accountID)
	defer unlock()

	var entry *domain.Entry
	err = uc.retrier.Retry(ctx, func() error {
		var txErr error
		entry, txErr = uc.amendTx(ctx, input, accountID, direction, category)
		return txErr
	})
	if err != nil {
		return nil, accountID, err
	}

	return entry, accountID, nil
}

func (uc *EntryUseCase) amendTx(ctx context.Context, input AmendEntryInput, accountID string, direction domain.Direction, category domain.Category) (*domain.Entry, error) {
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

	if err := checkWritable(account, input.UserID); err != nil {
		return nil, err
	}

	current, err := uc.entryRepo.GetByIDForUpdate(txCtx, tx, input.EntryID)
	if err != nil {
		return nil, err
	}

	if current.UserID != input.UserID || current.AccountID != account.ID {
		return nil, domain.ErrEntryNotFound
	}

	// Undo then redo against the current balance.
	intermediate := domain.Reverse(account.Balance, current.Direction, current.Amount)
	final := intermediate.Add(domain.Effect(direction, input.Amount))
	if final.IsNegative() {
		return nil, &domain.InsufficientFundsError{Balance: account.Balance, Requested: input.Amount}
	}

	now := uc.now()
	updated := current.Clone()
	updated.Amount = input.Amount
	updated.Direction = direction
	updated.Category = category
	if input.Description != nil {
		updated.Description = strings.TrimSpace(*input.Description)
	}
	if input.Reference != nil {
		updated.Reference = strings.TrimSpace(*input.Reference)
	}
	if input.EntryDate != nil {
		updated.EntryDate = input.EntryDate.UTC()
	}
	updated.ClosingBalance = updated.OpeningBalance.Add(updated.Effect())
	updated.UpdatedAt = now

	delta := updated.Effect().Sub(current.Effect())
	if err := uc.rechain(txCtx, tx, account.ID, current.Sequence, delta); err != nil {
		return nil, err
	}

	if err := uc.entryRepo.Update(txCtx, tx, updated); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, final, account.Version, now); err != nil {
		return nil, err
	}

	if err := uc.record(txCtx, tx,
		&domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       input.UserID,
			Action:       domain.AuditActionEntryUpdate,
			ResourceType: domain.AggregateTypeEntry,
			ResourceID:   updated.ID,
			BeforeState:  domain.EntryState(current),
			AfterState:   domain.EntryState(updated),
			CreatedAt:    now,
		},
		domain.NewEntryEvent(uc.idGen.Generate(), domain.EventTypeEntryUpdated, updated, final.StringFixed(domain.AmountScale), now),
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, &domain.ConsistencyError{Op: OpAmend, AccountID: account.ID, EntryID: updated.ID, Err: err}
	}

	return updated, nil
}

// Remove deletes an entry and reverses its effect on the account. A missing account is
// tolerated: the entry is still deleted.
func (uc *EntryUseCase) Remove(ctx context.Context, entryID, userID string) (*RemoveResult, error) {
	start := time.Now()
	result, accountID, err := uc.remove(ctx, entryID, userID)
	uc.finish(ctx, OpRemove, accountID, start, err)
	return result, err
}

func (uc *EntryUseCase) remove(ctx context.Context, entryID, userID string) (*RemoveResult, string, error) {
	existing, err := uc.GetEntry(ctx, entryID, userID)
	if err != nil {
		return nil, "", err
	}

	accountID := existing.AccountID
	unlock := uc.locker.Lock(accountID)
	defer unlock()

	var result *RemoveResult
	err = uc.retrier.Retry(ctx, func() error {
		var txErr error
		result, txErr = uc.removeTx(ctx, entryID, userID, accountID)
		return txErr
	})
	if err != nil {
		return nil, accountID, err
	}

	return result, accountID, nil
}

func (uc *EntryUseCase) removeTx(ctx context.Context, entryID, userID, accountID string) (*RemoveResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(txCtx)

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, accountID)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	entry, err := uc.entryRepo.GetByIDForUpdate(txCtx, tx, entryID)
	if err != nil {
		return nil, err
	}

	if entry.UserID != userID {
		return nil, domain.ErrEntryNotFound
	}

	now := uc.now()
	result := &RemoveResult{RemovedEntryID: entry.ID}

	if account != nil {
		newBalance := domain.Reverse(account.Balance, entry.Direction, entry.Amount)
		if newBalance.IsNegative() {
			return nil, &domain.InsufficientFundsError{Balance: account.Balance, Requested: entry.Amount}
		}

		if err := uc.rechain(txCtx, tx, account.ID, entry.Sequence, entry.Effect().Neg()); err != nil {
			return nil, err
		}

		if err := uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, newBalance, account.Version, now); err != nil {
			return nil, err
		}

		result.NewBalance = newBalance
		result.AccountUpdated = true
	}

	if err := uc.entryRepo.Delete(txCtx, tx, entry.ID); err != nil {
		return nil, err
	}

	if err := uc.record(txCtx, tx,
		&domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       userID,
			Action:       domain.AuditActionEntryDelete,
			ResourceType: domain.AggregateTypeEntry,
			ResourceID:   entry.ID,
			BeforeState:  domain.EntryState(entry),
			CreatedAt:    now,
		},
		domain.NewEntryEvent(uc.idGen.Generate(), domain.EventTypeEntryDeleted, entry, result.NewBalance.StringFixed(domain.AmountScale), now),
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, &domain.ConsistencyError{Op: OpRemove, AccountID: accountID, EntryID: entry.ID, Err: err}
	}

	return result, nil
}

// rechain shifts the snapshots of every entry applied after sequence by delta. Only the
// account's final balance is held non-negative; historical snapshots may dip below zero.
func (uc *EntryUseCase) rechain(ctx context.Context, tx Transaction, accountID string, sequence int64, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	return uc.entryRepo.ShiftAfter(ctx, tx, accountID, sequence, delta)
}

// GetEntry returns an entry owned by userID.
func (uc *EntryUseCase) GetEntry(ctx context.Context, entryID, userID string) (*domain.Entry, error) {
	if strings.TrimSpace(entryID) == "" {
		return nil, domain.NewValidationError("id", "transaction id is required")
	}

	entry, err := uc.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if entry.UserID != userID {
		return nil, domain.ErrEntryNotFound
	}

	return entry, nil
}

// ListForAccount returns one page of the account's entries together with the summary of
// every matching entry and the current balance, all read under the account lock.
func (uc *EntryUseCase) ListForAccount(ctx context.Context, input ListEntriesInput) (*domain.Statement, error) {
	start := time.Now()
	stmt, err := uc.list(ctx, input)
	uc.metrics.RecordOperation(OpList, domain.Kind(err), time.Since(start))
	return stmt, err
}

func (uc *EntryUseCase) list(ctx context.Context, input ListEntriesInput) (*domain.Statement, error) {
	unlock := uc.locker.Lock(input.AccountID)
	defer unlock()

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	// Entries of deactivated accounts stay readable by their owner.
	if !account.OwnedBy(input.UserID) {
		return nil, domain.ErrAccountNotFound
	}

	page := input.Page.Normalize()

	sort := input.Sort
	if sort.Field == "" {
		sort.Field = domain.DefaultEntrySort.Field
	}
	if sort.Order == "" {
		sort.Order = domain.DefaultEntrySort.Order
	}

	entries, err := uc.entryRepo.List(ctx, account.ID, input.Filter, sort, page)
	if err != nil {
		return nil, err
	}

	summary, err := uc.summarize(ctx, account, input.Filter)
	if err != nil {
		return nil, err
	}

	return &domain.Statement{
		AccountID:      account.ID,
		Entries:        entries,
		Page:           domain.NewPageMeta(page, summary.Count()),
		Summary:        summary,
		CurrentBalance: account.Balance,
	}, nil
}

// summarize reads the summary through the cache. Keys include the account version, which
// every balance write bumps, so a cached summary never outlives the ledger it describes.
func (uc *EntryUseCase) summarize(ctx context.Context, account *domain.Account, filter domain.EntryFilter) (domain.EntrySummary, error) {
	if uc.cache == nil {
		return uc.entryRepo.Summarize(ctx, account.ID, filter)
	}

	key := summaryCacheKey(account.ID, account.Version, filter)

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("statement cache read failed")
	} else if data != nil {
		var cached domain.EntrySummary
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	summary, err := uc.entryRepo.Summarize(ctx, account.ID, filter)
	if err != nil {
		return domain.EntrySummary{}, err
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
			uc.logger.Warn().Err(err).Str("key", key).Msg("statement cache write failed")
		}
	}

	return summary, nil
}

func summaryCacheKey(accountID string, version int64, f domain.EntryFilter) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(f.Search))
	b.WriteByte('|')
	if f.StartDate != nil {
		b.WriteString(f.StartDate.UTC().Format(time.RFC3339Nano))
	}
	b.WriteByte('|')
	if f.EndDate != nil {
		b.WriteString(f.EndDate.UTC().Format(time.RFC3339Nano))
	}
	fmt.Fprintf(&b, "|%s|%s|", f.Direction, f.Category)
	if f.MinAmount != nil {
		b.WriteString(f.MinAmount.String())
	}
	b.WriteByte('|')
	if f.MaxAmount != nil {
		b.WriteString(f.MaxAmount.String())
	}

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("statement:summary:%s:v%d:%s", accountID, version, hex.EncodeToString(sum[:8]))
}

// finish records metrics and handles consistency failures once the account lock has been
// released.
func (uc *EntryUseCase) finish(ctx context.Context, op, accountID string, start time.Time, err error) {
	uc.metrics.RecordOperation(op, domain.Kind(err), time.Since(start))

	var cerr *domain.ConsistencyError
	if !errors.As(err, &cerr) {
		return
	}

	uc.metrics.RecordConsistencyError(op)
	uc.logger.Error().
		Err(cerr.Err).
		Bool("consistency", true).
		Str("op", op).
		Str("account_id", cerr.AccountID).
		Str("entry_id", cerr.EntryID).
		Msg("ledger write outcome unknown, reconciling account")

	if uc.reconciler == nil || accountID == "" {
		return
	}

	result, rerr := uc.reconciler.ReconcileAccount(context.WithoutCancel(ctx), accountID)
	if rerr != nil {
		uc.logger.Error().Err(rerr).Str("account_id", accountID).Msg("reconciliation after consistency error failed")
		return
	}

	uc.logger.Info().
		Str("account_id", accountID).
		Bool("repaired", result.Repaired).
		Str("balance", result.CalculatedBalance.String()).
		Msg("account reconciled after consistency error")
}

func checkWritable(account *domain.Account, userID string) error {
	if !account.OwnedBy(userID) {
		return domain.ErrAccountNotFound
	}
	if !account.IsActive {
		return domain.ErrAccountInactive
	}
	return nil
}

func validateEntryFields(amount decimal.Decimal, direction, category, description, reference string) (domain.Direction, domain.Category, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return "", "", err
	}

	d, err := domain.ValidateDirection(direction)
	if err != nil {
		return "", "", err
	}

	c, err := domain.ValidateCategory(d, category)
	if err != nil {
		return "", "", err
	}

	if err := domain.ValidateText("description", description, domain.MaxDescriptionLength); err != nil {
		return "", "", err
	}

	if err := domain.ValidateText("reference", reference, domain.MaxReferenceLength); err != nil {
		return "", "", err
	}

	return d, c, nil
}
