package memory

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository in memory.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// CheckConsistency sums recorded balances and what opening balances plus entries imply.
// Entries of accounts that no longer exist are ignored.
func (r *LedgerRepository) CheckConsistency(_ context.Context) (decimal.Decimal, decimal.Decimal, error) {
	total, expected := decimal.Zero, decimal.Zero
	r.store.read(func(s *state) {
		for _, a := range s.accounts {
			total = total.Add(a.Balance)
			expected = expected.Add(a.OpeningBalance)
		}
		for _, e := range s.entries {
			if _, ok := s.accounts[e.AccountID]; ok {
				expected = expected.Add(e.Effect())
			}
		}
	})
	return total, expected, nil
}
