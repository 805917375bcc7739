package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when an account is opened without a currency.
const DefaultCurrency = "INR"

// Account is a user's bank account. Balance is only changed by the ledger engine.
type Account struct {
	ID             string
	UserID         string
	BankName       BankName
	AccountType    AccountType
	AccountNumber  string
	Currency       string
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	Version        int64
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OwnedBy reports whether the account belongs to userID.
func (a *Account) OwnedBy(userID string) bool {
	return a.UserID == userID
}

// ApplyDirection returns the balance after moving amount in direction d.
// It fails with an InsufficientFundsError if the result would be negative.
func (a *Account) ApplyDirection(d Direction, amount decimal.Decimal) (decimal.Decimal, error) {
	return ApplyToBalance(a.Balance, d, amount)
}

// ApplyToBalance applies the directional rule to balance.
func ApplyToBalance(balance decimal.Decimal, d Direction, amount decimal.Decimal) (decimal.Decimal, error) {
	if d == DirectionCredit {
		return balance.Add(amount), nil
	}

	next := balance.Sub(amount)
	if next.IsNegative() {
		return balance, &InsufficientFundsError{Balance: balance, Requested: amount}
	}
	return next, nil
}

// Reverse returns the balance as if an entry of amount in direction d had never been
// applied. Reversal is not checked for negativity; callers check the final balance.
func Reverse(balance decimal.Decimal, d Direction, amount decimal.Decimal) decimal.Decimal {
	if d == DirectionCredit {
		return balance.Sub(amount)
	}
	return balance.Add(amount)
}
