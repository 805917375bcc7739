package usecase

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/VineetPaun/expense-management/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	options
	txManager   TransactionManager
	accountRepo AccountRepository
	idGen       IDGenerator
	locker      *AccountLocker
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	idGen IDGenerator,
	locker *AccountLocker,
	opts ...Option,
) *AccountUseCase {
	return &AccountUseCase{
		options:     newOptions(opts),
		txManager:   txManager,
		accountRepo: accountRepo,
		idGen:       idGen,
		locker:      locker,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	UserID         string
	BankName       string
	AccountType    string
	AccountNumber  string
	Currency       string
	InitialBalance decimal.Decimal
}

// OpenAccount creates a new active account. The initial balance becomes the account's
// opening balance; it is not recorded as an entry.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, domain.NewValidationError("user_id", "user id is required")
	}

	bank, err := domain.ValidateBankName(input.BankName)
	if err != nil {
		return nil, err
	}

	accountType, err := domain.ValidateAccountType(input.AccountType)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountNumber(input.AccountNumber); err != nil {
		return nil, err
	}

	currency, err := domain.ValidateCurrency(input.Currency)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateInitialBalance(input.InitialBalance); err != nil {
		return nil, err
	}

	now := uc.now()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		UserID:         input.UserID,
		BankName:       bank,
		AccountType:    accountType,
		AccountNumber:  strings.TrimSpace(input.AccountNumber),
		Currency:       currency,
		Balance:        input.InitialBalance,
		OpeningBalance: input.InitialBalance,
		Version:        0,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := uc.record(ctx, tx,
		&domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       account.UserID,
			Action:       domain.AuditActionAccountOpen,
			ResourceType: domain.AggregateTypeAccount,
			ResourceID:   account.ID,
			AfterState:   domain.AccountState(account),
			CreatedAt:    now,
		},
		domain.NewAccountEvent(uc.idGen.Generate(), domain.EventTypeAccountOpened, account, now),
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account owned by userID. Deactivated accounts remain readable.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id, userID string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(userID) {
		return nil, domain.ErrAccountNotFound
	}

	return account, nil
}

// ListAccounts lists the user's accounts, newest first.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, userID string, includeInactive bool) ([]*domain.Account, error) {
	return uc.accountRepo.ListByUser(ctx, userID, includeInactive)
}

// UpdateAccountInput represents input for editing account details. Nil fields are left
// unchanged. The balance can not be edited.
type UpdateAccountInput struct {
	AccountID     string
	UserID        string
	BankName      *string
	AccountType   *string
	AccountNumber *string
}

// UpdateAccount edits the mutable details of an active account.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, input UpdateAccountInput) (*domain.Account, error) {
	unlock := uc.locker.Lock(input.AccountID)
	defer unlock()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := checkWritable(account, input.UserID); err != nil {
		return nil, err
	}

	before := domain.AccountState(account)

	if input.BankName != nil {
		if account.BankName, err = domain.ValidateBankName(*input.BankName); err != nil {
			return nil, err
		}
	}

	if input.AccountType != nil {
		if account.AccountType, err = domain.ValidateAccountType(*input.AccountType); err != nil {
			return nil, err
		}
	}

	if input.AccountNumber != nil {
		if err := domain.ValidateAccountNumber(*input.AccountNumber); err != nil {
			return nil, err
		}
		account.AccountNumber = strings.TrimSpace(*input.AccountNumber)
	}

	account.UpdatedAt = uc.now()

	if err := uc.accountRepo.UpdateDetails(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := uc.record(ctx, tx,
		&domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       input.UserID,
			Action:       domain.AuditActionAccountUpdate,
			ResourceType: domain.AggregateTypeAccount,
			ResourceID:   account.ID,
			BeforeState:  before,
			AfterState:   domain.AccountState(account),
			CreatedAt:    account.UpdatedAt,
		},
		nil,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// DeactivateAccount soft-deletes an account. Its entries are left untouched and stay
// readable.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, id, userID string) error {
	unlock := uc.locker.Lock(id)
	defer unlock()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if err := checkWritable(account, userID); err != nil {
		return err
	}

	now := uc.now()
	if err := uc.accountRepo.Deactivate(ctx, tx, id, now); err != nil {
		return err
	}

	before := domain.AccountState(account)
	account.IsActive = false
	account.UpdatedAt = now

	if err := uc.record(ctx, tx,
		&domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       userID,
			Action:       domain.AuditActionAccountDeactivate,
			ResourceType: domain.AggregateTypeAccount,
			ResourceID:   id,
			BeforeState:  before,
			AfterState:   domain.AccountState(account),
			CreatedAt:    now,
		},
		domain.NewAccountEvent(uc.idGen.Generate(), domain.EventTypeAccountDeactivated, account, now),
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListAuditLogs returns the user's audit trail, optionally narrowed to one resource.
func (uc *AccountUseCase) ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if uc.audit == nil {
		return []*domain.AuditLog{}, nil
	}

	_, filter.Limit = domain.ValidatePagination(1, filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return uc.audit.List(ctx, filter)
}
