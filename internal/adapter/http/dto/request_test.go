package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VineetPaun/expense-management/internal/domain"
)

func TestValidate(t *testing.T) {
	err := Validate(&CreateTransactionRequest{Type: "credit"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var fe *FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Fields, "account_id")
	assert.Contains(t, fe.Fields, "amount")
	assert.Contains(t, fe.Fields, "category")
	assert.NotContains(t, fe.Fields, "type")
	assert.True(t, strings.HasPrefix(err.Error(), "invalid request: account_id"))

	assert.NoError(t, Validate(&LoginRequest{Email: "a@b.co", Password: "x"}))
}

func TestCreateTransactionRequest_Decode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		amount  string
		date    *time.Time
		wantErr error
	}{
		{
			name:   "string amount and calendar date",
			body:   `{"account_id":"acc-1","amount":"125.50","type":"debit","category":"Groceries","entry_date":"2026-02-01"}`,
			amount: "125.5",
			date:   ptrTime(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:   "numeric amount and timestamp",
			body:   `{"account_id":"acc-1","amount":40,"type":"credit","category":"Salary","entry_date":"2026-02-01T10:00:00+05:30"}`,
			amount: "40",
			date:   ptrTime(time.Date(2026, 2, 1, 4, 30, 0, 0, time.UTC)),
		},
		{
			name:    "negative amount",
			body:    `{"account_id":"acc-1","amount":"-5","type":"debit","category":"Groceries"}`,
			wantErr: domain.ErrValidation,
		},
		{
			name:    "non-numeric amount",
			body:    `{"account_id":"acc-1","amount":"abc","type":"debit","category":"Groceries"}`,
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateTransactionRequest
			dec := json.NewDecoder(strings.NewReader(tt.body))
			dec.UseNumber()
			require.NoError(t, dec.Decode(&req))

			input, err := req.ToUseCaseInput("user-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", input.UserID)
			assert.Equal(t, tt.amount, input.Amount.String())
			require.NotNil(t, input.EntryDate)
			assert.True(t, tt.date.Equal(*input.EntryDate), input.EntryDate)
		})
	}
}

func TestDate_Invalid(t *testing.T) {
	var d Date
	err := json.Unmarshal([]byte(`"01/02/2026"`), &d)
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Nil(t, d.ptr())
}

func TestUpdateTransactionRequest_KeepsOmittedFields(t *testing.T) {
	var req UpdateTransactionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"10","type":"debit","category":"Rent"}`), &req))

	input, err := req.ToUseCaseInput("ent-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ent-1", input.EntryID)
	assert.Nil(t, input.Description)
	assert.Nil(t, input.Reference)
	assert.Nil(t, input.EntryDate)
	assert.True(t, input.Amount.Equal(decimal.NewFromInt(10)))
}

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name    string
		balance any
		want    string
		wantErr bool
	}{
		{"missing", nil, "0", false},
		{"empty string", "", "0", false},
		{"string", "1500.75", "1500.75", false},
		{"number", json.Number("20"), "20", false},
		{"garbage", "lots", "", true},
		{"bool", true, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &CreateAccountRequest{BankName: "HDFC Bank", InitialBalance: tt.balance}
			input, err := req.ToUseCaseInput("user-1")
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", input.UserID)
			assert.Equal(t, tt.want, input.InitialBalance.String())
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
