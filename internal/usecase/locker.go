package usecase

import "sync"

// AccountLocker serializes mutations per account within the process. Locks for
// different accounts are independent.
type AccountLocker struct {
	mu    sync.Mutex
	locks map[string]*accountLock
}

type accountLock struct {
	mu   sync.Mutex
	refs int
}

// NewAccountLocker creates an empty AccountLocker.
func NewAccountLocker() *AccountLocker {
	return &AccountLocker{locks: make(map[string]*accountLock)}
}

// Lock blocks until the account is free and returns the function that releases it.
func (l *AccountLocker) Lock(accountID string) (unlock func()) {
	l.mu.Lock()
	lk, ok := l.locks[accountID]
	if !ok {
		lk = &accountLock{}
		l.locks[accountID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			lk.mu.Unlock()

			l.mu.Lock()
			lk.refs--
			if lk.refs == 0 {
				delete(l.locks, accountID)
			}
			l.mu.Unlock()
		})
	}
}

// held returns the number of accounts with an outstanding lock or waiter.
func (l *AccountLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
