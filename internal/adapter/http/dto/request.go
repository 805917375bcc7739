package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

var validate = newValidator()

// Validate checks the struct tags of a decoded request. Field errors are returned as
// *FieldErrors so handlers can render them per field.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := &FieldErrors{Fields: make(map[string]string, len(verrs))}
	for _, v := range verrs {
		fe.Fields[v.Field()] = fmt.Sprintf("failed on '%s' validation", v.Tag())
	}
	return fe
}

// FieldErrors carries per-field validation failures. It unwraps to domain.ErrValidation.
type FieldErrors struct {
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, f+" "+e.Fields[f])
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *FieldErrors) Unwrap() error { return domain.ErrValidation }

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBalance reads an opening balance sent as a JSON string or number.
func parseBalance(v any) (decimal.Decimal, error) {
	var s string
	switch val := v.(type) {
	case string:
		s = strings.TrimSpace(val)
	case json.Number:
		s = val.String()
	case float64:
		return decimal.NewFromFloat(val), nil
	default:
		return decimal.Zero, domain.NewValidationError("initial_balance", "initial balance must be a string or number")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.NewValidationError("initial_balance", "initial balance %q is not a number", s)
	}
	return d, nil
}

// Date accepts either a calendar date (2006-01-02) or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.NewValidationError("entry_date", "date must be a string")
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate parses s as 2006-01-02 or RFC 3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError("entry_date", "invalid date %q", s)
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// RegisterRequest represents a request to create a user.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{Email: r.Email, Name: r.Name, Password: r.Password}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	BankName       string `json:"bank_name" validate:"required"`
	AccountType    string `json:"account_type"`
	AccountNumber  string `json:"account_number"`
	Currency       string `json:"currency"`
	InitialBalance any    `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input. A missing initial balance is zero.
func (r *CreateAccountRequest) ToUseCaseInput(userID string) (usecase.OpenAccountInput, error) {
	input := usecase.OpenAccountInput{
		UserID:        userID,
		BankName:      r.BankName,
		AccountType:   r.AccountType,
		AccountNumber: r.AccountNumber,
		Currency:      r.Currency,
	}

	if r.InitialBalance != nil && r.InitialBalance != "" {
		balance, err := parseBalance(r.InitialBalance)
		if err != nil {
			return input, err
		}
		input.InitialBalance = balance
	}

	return input, nil
}

// UpdateAccountRequest edits account details. Omitted fields are unchanged.
type UpdateAccountRequest struct {
	BankName      *string `json:"bank_name"`
	AccountType   *string `json:"account_type"`
	AccountNumber *string `json:"account_number"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput(accountID, userID string) usecase.UpdateAccountInput {
	return usecase.UpdateAccountInput{
		AccountID:     accountID,
		UserID:        userID,
		BankName:      r.BankName,
		AccountType:   r.AccountType,
		AccountNumber: r.AccountNumber,
	}
}

// CreateTransactionRequest represents a request to record an entry.
type CreateTransactionRequest struct {
	AccountID   string `json:"account_id" validate:"required"`
	Amount      any    `json:"amount" validate:"required"`
	Type        string `json:"type" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description"`
	Reference   string `json:"reference"`
	EntryDate   *Date  `json:"entry_date"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput(userID string) (usecase.ApplyEntryInput, error) {
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.ApplyEntryInput{}, err
	}

	return usecase.ApplyEntryInput{
		AccountID:   r.AccountID,
		UserID:      userID,
		Amount:      amount,
		Direction:   r.Type,
		Category:    r.Category,
		Description: r.Description,
		Reference:   r.Reference,
		EntryDate:   r.EntryDate.ptr(),
	}, nil
}

// UpdateTransactionRequest replaces an entry's amount, type and category. Omitted text
// fields and date keep their current value.
type UpdateTransactionRequest struct {
	Amount      any     `json:"amount" validate:"required"`
	Type        string  `json:"type" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Description *string `json:"description"`
	Reference   *string `json:"reference"`
	EntryDate   *Date   `json:"entry_date"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransactionRequest) ToUseCaseInput(entryID, userID string) (usecase.AmendEntryInput, error) {
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.AmendEntryInput{}, err
	}

	return usecase.AmendEntryInput{
		EntryID:     entryID,
		UserID:      userID,
		Amount:      amount,
		Direction:   r.Type,
		Category:    r.Category,
		Description: r.Description,
		Reference:   r.Reference,
		EntryDate:   r.EntryDate.ptr(),
	}, nil
}
