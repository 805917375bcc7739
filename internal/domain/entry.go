package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one balance-affecting event on an account, with the balance snapshot
// immediately before and after it.
type Entry struct {
	ID             string
	UserID         string
	AccountID      string
	Sequence       int64
	Amount         decimal.Decimal
	Direction      Direction
	Category       Category
	Description    string
	Reference      string
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	EntryDate      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Effect returns the signed change this entry makes to the balance.
func (e *Entry) Effect() decimal.Decimal {
	return Effect(e.Direction, e.Amount)
}

// Effect returns the signed change of moving amount in direction d.
func Effect(d Direction, amount decimal.Decimal) decimal.Decimal {
	if d == DirectionDebit {
		return amount.Neg()
	}
	return amount
}

// CheckArithmetic verifies that the snapshot matches the directional rule.
func (e *Entry) CheckArithmetic() error {
	want := e.OpeningBalance.Add(e.Effect())
	if !e.ClosingBalance.Equal(want) {
		return fmt.Errorf("entry %s: closing balance %s, expected %s", e.ID, e.ClosingBalance, want)
	}
	return nil
}

// Shift moves both snapshots by delta. Used when an earlier entry changes.
func (e *Entry) Shift(delta decimal.Decimal) {
	e.OpeningBalance = e.OpeningBalance.Add(delta)
	e.ClosingBalance = e.ClosingBalance.Add(delta)
}

// Clone returns a copy of the entry.
func (e *Entry) Clone() *Entry {
	c := *e
	return &c
}
