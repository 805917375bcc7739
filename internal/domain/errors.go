package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error kinds. Every error returned by the ledger unwraps to one of these.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConsistency       = errors.New("ledger consistency failure")
)

var (
	// Account errors
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrAccountInactive = fmt.Errorf("account is inactive: %w", ErrNotFound)

	// Entry errors
	ErrEntryNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrInvalidAmount = &ValidationError{Field: "amount", Message: "amount must be a positive number"}

	// ErrConcurrentUpdate is returned when the account version moved between read and write.
	ErrConcurrentUpdate = errors.New("account was modified concurrently")
)

// ValidationError describes malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientFundsError is returned when a debit (or a reversal of a credit) would
// drive the balance below zero.
type InsufficientFundsError struct {
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, requested %s", e.Balance.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// ConsistencyError reports that the entry write and the account write of one operation
// may not have been applied together.
type ConsistencyError struct {
	Op        string
	AccountID string
	EntryID   string
	Err       error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: account %s entry %s: %v", e.Op, e.AccountID, e.EntryID, e.Err)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *ConsistencyError) Unwrap() []error { return []error{ErrConsistency, e.Err} }

// Kind returns the error kind name used in API responses and metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrConsistency):
		return "consistency"
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return "unauthorized"
	case errors.Is(err, ErrEmailTaken):
		return "conflict"
	default:
		return "internal"
	}
}
