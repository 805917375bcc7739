package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidEmail    = &ValidationError{Field: "email", Message: "invalid email format"}
	ErrPasswordTooWeak = errors.New("password does not meet requirements")
)

// Validation constants
const (
	MaxAmount            = "1000000000000" // 1 trillion
	AmountScale          = 2
	MaxDescriptionLength = 500
	MaxReferenceLength   = 100
	MaxAccountNumberLen  = 34
	MinPasswordLength    = 8
	MaxPasswordLength    = 128

	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
	"AED": true,
}

var (
	emailRegex         = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	accountNumberRegex = regexp.MustCompile(`^[0-9A-Za-z-]+$`)
	hasUpper           = regexp.MustCompile(`[A-Z]`)
	hasLower           = regexp.MustCompile(`[a-z]`)
	hasNumber          = regexp.MustCompile(`[0-9]`)
)

// ParseAmount converts a JSON-decoded amount (string or number) into a decimal and
// validates it.
func ParseAmount(v any) (decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)

	switch val := v.(type) {
	case nil:
		return decimal.Zero, NewValidationError("amount", "amount is required")
	case decimal.Decimal:
		d = val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return decimal.Zero, NewValidationError("amount", "amount is required")
		}
		d, err = decimal.NewFromString(s)
	case json.Number:
		d, err = decimal.NewFromString(val.String())
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, ErrInvalidAmount
		}
		d = decimal.NewFromFloat(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case int64:
		d = decimal.NewFromInt(val)
	default:
		return decimal.Zero, NewValidationError("amount", "amount must be a string or number")
	}

	if err != nil {
		return decimal.Zero, NewValidationError("amount", "amount %q is not a number", fmt.Sprint(v))
	}

	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount checks an entry amount is positive, has at most two decimals and is
// below the maximum.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Round(AmountScale)) {
		return NewValidationError("amount", "amount may have at most %d decimal places", AmountScale)
	}

	maxAmount := decimal.RequireFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return NewValidationError("amount", "maximum amount is %s", MaxAmount)
	}

	return nil
}

// ValidateInitialBalance checks an opening balance: zero is allowed, negative is not.
func ValidateInitialBalance(balance decimal.Decimal) error {
	if balance.IsNegative() {
		return NewValidationError("initial_balance", "initial balance cannot be negative")
	}
	if !balance.Equal(balance.Round(AmountScale)) {
		return NewValidationError("initial_balance", "initial balance may have at most %d decimal places", AmountScale)
	}
	return nil
}

// ValidateDirection validates the direction of an entry being written. Only the exact
// literals "credit" and "debit" are accepted; ParseDirection is the lenient form for filters.
func ValidateDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.IsValid() {
		return "", NewValidationError("type", "type must be %q or %q", DirectionCredit, DirectionDebit)
	}
	return d, nil
}

// ValidateCategory checks category belongs to the set for direction d.
func ValidateCategory(d Direction, category string) (Category, error) {
	c := Category(strings.TrimSpace(category))
	if c == "" {
		return "", NewValidationError("category", "category is required")
	}
	if !c.AllowedFor(d) {
		return "", NewValidationError("category", "category %q is not allowed for %s transactions", c, d)
	}
	return c, nil
}

// ValidateBankName validates bank name
func ValidateBankName(name string) (BankName, error) {
	b := BankName(strings.TrimSpace(name))
	if !b.IsValid() {
		return "", NewValidationError("bank_name", "unsupported bank %q", name)
	}
	return b, nil
}

// ValidateAccountType validates account type, defaulting to Savings when empty.
func ValidateAccountType(t string) (AccountType, error) {
	t = strings.TrimSpace(t)
	if t == "" {
		return DefaultAccountType, nil
	}
	at := AccountType(t)
	if !at.IsValid() {
		return "", NewValidationError("account_type", "unsupported account type %q", t)
	}
	return at, nil
}

// ValidateAccountNumber validates an optional external account number.
func ValidateAccountNumber(n string) error {
	n = strings.TrimSpace(n)
	if n == "" {
		return nil
	}
	if len(n) > MaxAccountNumberLen || !accountNumberRegex.MatchString(n) {
		return NewValidationError("account_number", "invalid account number")
	}
	return nil
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency, nil
	}

	if !validCurrencies[currency] {
		return "", NewValidationError("currency", "%s is not a valid ISO 4217 currency code", currency)
	}

	return currency, nil
}

// ValidateText checks a free-text field against a maximum length.
func ValidateText(field, value string, maxLen int) error {
	if len(value) > maxLen {
		return NewValidationError(field, "must not exceed %d characters", maxLen)
	}
	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("%v: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)}
	}

	if len(password) > MaxPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("%v: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)}
	}

	if !hasUpper.MatchString(password) || !hasLower.MatchString(password) || !hasNumber.MatchString(password) {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("%v: must contain uppercase, lowercase, and numbers", ErrPasswordTooWeak)}
	}

	return nil
}

// ValidatePagination clamps page and limit into the supported range.
func ValidatePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return page, limit
}
