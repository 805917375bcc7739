package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository in memory.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Create stages a new entry.
func (r *EntryRepository) Create(_ context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	e := *entry
	return stage(tx, func(s *state) error {
		if _, ok := s.entries[e.ID]; ok {
			return fmt.Errorf("memory: transaction %s already exists", e.ID)
		}
		s.entries[e.ID] = e
		return nil
	})
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(_ context.Context, id string) (*domain.Entry, error) {
	var (
		e  domain.Entry
		ok bool
	)
	r.store.read(func(s *state) { e, ok = s.entries[id] })
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	return &e, nil
}

// GetByIDForUpdate reads the committed entry.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, _ usecase.Transaction, id string) (*domain.Entry, error) {
	return r.GetByID(ctx, id)
}

// Update stages a full rewrite of the entry.
func (r *EntryRepository) Update(_ context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	e := *entry
	return stage(tx, func(s *state) error {
		if _, ok := s.entries[e.ID]; !ok {
			return domain.ErrEntryNotFound
		}
		s.entries[e.ID] = e
		return nil
	})
}

// Delete stages removal of the entry.
func (r *EntryRepository) Delete(_ context.Context, tx usecase.Transaction, id string) error {
	return stage(tx, func(s *state) error {
		if _, ok := s.entries[id]; !ok {
			return domain.ErrEntryNotFound
		}
		delete(s.entries, id)
		return nil
	})
}

// ShiftAfter stages a shift of every later entry's snapshots by delta.
func (r *EntryRepository) ShiftAfter(_ context.Context, tx usecase.Transaction, accountID string, sequence int64, delta decimal.Decimal) error {
	return stage(tx, func(s *state) error {
		for id, e := range s.entries {
			if e.AccountID == accountID && e.Sequence > sequence {
				e.Shift(delta)
				s.entries[id] = e
			}
		}
		return nil
	})
}

func (r *EntryRepository) matching(accountID string, filter domain.EntryFilter) []*domain.Entry {
	entries := make([]*domain.Entry, 0)
	r.store.read(func(s *state) {
		for _, e := range s.entries {
			if e.AccountID != accountID || !filter.Matches(&e) {
				continue
			}
			e := e
			entries = append(entries, &e)
		}
	})
	return entries
}

// List returns one sorted page of the account's matching entries.
func (r *EntryRepository) List(_ context.Context, accountID string, filter domain.EntryFilter, order domain.EntrySort, page domain.PageRequest) ([]*domain.Entry, error) {
	entries := r.matching(accountID, filter)
	sort.Slice(entries, func(i, j int) bool { return order.Less(entries[i], entries[j]) })
	return window(entries, page.Limit, page.Offset()), nil
}

// Summarize aggregates every matching entry.
func (r *EntryRepository) Summarize(_ context.Context, accountID string, filter domain.EntryFilter) (domain.EntrySummary, error) {
	var summary domain.EntrySummary
	for _, e := range r.matching(accountID, filter) {
		summary.Add(e)
	}
	return summary, nil
}

// ListByAccount returns every entry of the account in application order.
func (r *EntryRepository) ListByAccount(_ context.Context, accountID string) ([]*domain.Entry, error) {
	entries := r.matching(accountID, domain.EntryFilter{})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
	return entries, nil
}
