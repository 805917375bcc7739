// Package memory is an in-process storage backend. It implements the same repository
// interfaces as the postgres package and can inject storage faults for tests.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// ApplyAll makes an injected commit failure apply every staged write before failing.
const ApplyAll = -1

// ErrTxClosed is returned when a committed or rolled back transaction is used.
var ErrTxClosed = errors.New("memory: transaction already closed")

type state struct {
	accounts map[string]domain.Account
	entries  map[string]domain.Entry
	users    map[string]domain.User
	audit    []domain.AuditLog
	outbox   []domain.OutboxEvent
}

func newState() *state {
	return &state{
		accounts: make(map[string]domain.Account),
		entries:  make(map[string]domain.Entry),
		users:    make(map[string]domain.User),
	}
}

func (s *state) clone() *state {
	c := &state{
		accounts: make(map[string]domain.Account, len(s.accounts)),
		entries:  make(map[string]domain.Entry, len(s.entries)),
		users:    make(map[string]domain.User, len(s.users)),
		audit:    append([]domain.AuditLog(nil), s.audit...),
		outbox:   append([]domain.OutboxEvent(nil), s.outbox...),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

type fault struct {
	beginErr      error
	writeAt       int
	writeErr      error
	commitErr     error
	commitApplied int
}

// Store holds all data behind a single lock. Transactions stage their writes and apply
// them atomically on commit.
type Store struct {
	mu    sync.RWMutex
	data  *state
	fault *fault
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

func (s *Store) nextFault() *fault {
	f := s.fault
	s.fault = nil
	if f == nil {
		return &fault{}
	}
	return f
}

func (s *Store) setFault(fn func(*fault)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault == nil {
		s.fault = &fault{}
	}
	fn(s.fault)
}

// FailNextBegin makes the next Begin return err.
func (s *Store) FailNextBegin(err error) {
	s.setFault(func(f *fault) { f.beginErr = err })
}

// FailNextWrite makes the n-th write (1-based) of the next transaction return err.
func (s *Store) FailNextWrite(n int, err error) {
	s.setFault(func(f *fault) {
		f.writeAt = n
		f.writeErr = err
	})
}

// FailNextCommit makes the next commit return err after applying the first applied
// staged writes. Use 0 for a clean failure and ApplyAll for a commit whose
// acknowledgement was lost.
func (s *Store) FailNextCommit(err error, applied int) {
	s.setFault(func(f *fault) {
		f.commitErr = err
		f.commitApplied = applied
	})
}

// DropAccount removes an account without touching its entries, as an out-of-band
// delete would.
func (s *Store) DropAccount(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.accounts, id)
}

func (s *Store) read(fn func(*state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data.clone()
	if err := fn(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

type op func(*state) error

// Tx is a memory transaction.
type Tx struct {
	store  *Store
	fault  *fault
	ops    []op
	writes int
	closed bool
}

func (t *Tx) stage(o op) error {
	if t.closed {
		return ErrTxClosed
	}
	t.writes++
	if t.fault.writeAt > 0 && t.writes == t.fault.writeAt {
		return t.fault.writeErr
	}
	t.ops = append(t.ops, o)
	return nil
}

// Commit applies every staged write, or none of them.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return ErrTxClosed
	}
	t.closed = true

	if err := ctx.Err(); err != nil {
		return err
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	ops := t.ops
	if t.fault.commitErr != nil && t.fault.commitApplied != ApplyAll {
		ops = ops[:min(t.fault.commitApplied, len(ops))]
	}

	next := t.store.data.clone()
	for _, o := range ops {
		if err := o(next); err != nil {
			return err
		}
	}
	t.store.data = next

	return t.fault.commitErr
}

// Rollback discards staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	t.closed = true
	t.ops = nil
	return nil
}

func stage(tx usecase.Transaction, o op) error {
	t, ok := tx.(*Tx)
	if !ok {
		return errors.New("memory: foreign transaction")
	}
	return t.stage(o)
}

// TxManager begins memory transactions.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.store.mu.Lock()
	f := m.store.nextFault()
	m.store.mu.Unlock()

	if f.beginErr != nil {
		return nil, f.beginErr
	}

	return &Tx{store: m.store, fault: f}, nil
}
