package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository in memory.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create stages a new account.
func (r *AccountRepository) Create(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	a := *account
	return stage(tx, func(s *state) error {
		if _, ok := s.accounts[a.ID]; ok {
			return fmt.Errorf("memory: account %s already exists", a.ID)
		}
		s.accounts[a.ID] = a
		return nil
	})
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	var (
		a  domain.Account
		ok bool
	)
	r.store.read(func(s *state) { a, ok = s.accounts[id] })
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

// GetByIDForUpdate reads the committed account. Writers are serialized by the caller.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, _ usecase.Transaction, id string) (*domain.Account, error) {
	return r.GetByID(ctx, id)
}

// UpdateBalance stages a version-checked balance write.
func (r *AccountRepository) UpdateBalance(_ context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error {
	check := func(s *state) (domain.Account, error) {
		a, ok := s.accounts[id]
		if !ok {
			return a, domain.ErrAccountNotFound
		}
		if a.Version != expectedVersion {
			return a, domain.ErrConcurrentUpdate
		}
		return a, nil
	}

	var err error
	r.store.read(func(s *state) { _, err = check(s) })
	if err != nil {
		return err
	}

	return stage(tx, func(s *state) error {
		a, err := check(s)
		if err != nil {
			return err
		}
		a.Balance = balance
		a.Version = expectedVersion + 1
		a.UpdatedAt = updatedAt
		s.accounts[id] = a
		return nil
	})
}

// UpdateDetails stages a write of the account's descriptive fields.
func (r *AccountRepository) UpdateDetails(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	next := *account
	return stage(tx, func(s *state) error {
		a, ok := s.accounts[next.ID]
		if !ok {
			return domain.ErrAccountNotFound
		}
		a.BankName = next.BankName
		a.AccountType = next.AccountType
		a.AccountNumber = next.AccountNumber
		a.UpdatedAt = next.UpdatedAt
		s.accounts[a.ID] = a
		return nil
	})
}

// Deactivate stages a soft delete.
func (r *AccountRepository) Deactivate(_ context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	return stage(tx, func(s *state) error {
		a, ok := s.accounts[id]
		if !ok {
			return domain.ErrAccountNotFound
		}
		a.IsActive = false
		a.UpdatedAt = updatedAt
		s.accounts[id] = a
		return nil
	})
}

// ListByUser lists the user's accounts, newest first.
func (r *AccountRepository) ListByUser(_ context.Context, userID string, includeInactive bool) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0)
	r.store.read(func(s *state) {
		for _, a := range s.accounts {
			if a.UserID != userID || (!a.IsActive && !includeInactive) {
				continue
			}
			a := a
			accounts = append(accounts, &a)
		}
	})

	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
		}
		return accounts[i].ID > accounts[j].ID
	})

	return accounts, nil
}

// List returns accounts in creation order.
func (r *AccountRepository) List(_ context.Context, limit, offset int) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0)
	r.store.read(func(s *state) {
		for _, a := range s.accounts {
			a := a
			accounts = append(accounts, &a)
		}
	})

	sort.Slice(accounts, func(i, j int) bool {
		if !accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
		}
		return accounts[i].ID < accounts[j].ID
	})

	return window(accounts, limit, offset), nil
}

func window[T any](items []T, limit, offset int) []T {
	offset = max(offset, 0)
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
