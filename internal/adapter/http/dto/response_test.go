package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

func TestAccountFromDomain(t *testing.T) {
	now := time.Now()
	account := &domain.Account{
		ID:             "acc-1",
		BankName:       domain.BankHDFC,
		AccountType:    domain.AccountTypeSavings,
		Currency:       "INR",
		Balance:        decimal.RequireFromString("123.4"),
		OpeningBalance: decimal.RequireFromString("100"),
		Version:        2,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	resp := AccountFromDomain(account)
	assert.Equal(t, "123.40", resp.Balance)
	assert.Equal(t, "100.00", resp.OpeningBalance)
	assert.Equal(t, "HDFC Bank", resp.BankName)
	assert.Equal(t, int64(2), resp.Version)

	list := AccountsFromDomain([]*domain.Account{account})
	require.Len(t, list, 1)
	assert.Equal(t, "acc-1", list[0].ID)
}

func TestStatementFromDomain(t *testing.T) {
	stmt := &domain.Statement{
		AccountID: "acc-1",
		Entries: []*domain.Entry{{
			ID:             "ent-1",
			AccountID:      "acc-1",
			Amount:         decimal.RequireFromString("40"),
			Direction:      domain.DirectionDebit,
			Category:       "Groceries",
			OpeningBalance: decimal.RequireFromString("100"),
			ClosingBalance: decimal.RequireFromString("60"),
		}},
		Page: domain.NewPageMeta(domain.PageRequest{Page: 1, Limit: 1}, 3),
		Summary: domain.EntrySummary{
			TotalCredit: decimal.RequireFromString("10"),
			CreditCount: 1,
			TotalDebit:  decimal.RequireFromString("60"),
			DebitCount:  2,
			NetFlow:     decimal.RequireFromString("-50"),
		},
		CurrentBalance: decimal.RequireFromString("60"),
	}

	resp := StatementFromDomain(stmt)
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "debit", resp.Transactions[0].Type)
	assert.Equal(t, "100.00", resp.Transactions[0].OpeningBalance)
	assert.Equal(t, "60.00", resp.Transactions[0].ClosingBalance)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNextPage)
	assert.False(t, resp.Pagination.HasPrevPage)
	assert.Equal(t, "-50.00", resp.Summary.NetFlow)
	assert.Equal(t, "60.00", resp.CurrentBalance)
}

func TestReportFromDomain(t *testing.T) {
	report := &usecase.ReconciliationReport{
		TotalAccounts:      2,
		ReconciledAccounts: 1,
		Discrepancies: []*usecase.ReconciliationResult{{
			AccountID:         "acc-2",
			RecordedBalance:   decimal.RequireFromString("25"),
			CalculatedBalance: decimal.RequireFromString("20"),
			Difference:        decimal.RequireFromString("5"),
		}},
	}

	resp := ReportFromDomain(report)
	require.Len(t, resp.Discrepancies, 1)
	assert.Equal(t, "5.00", resp.Discrepancies[0].Difference)
	assert.False(t, resp.LedgerConsistent)
}

func TestRemoveFromResult(t *testing.T) {
	resp := RemoveFromResult(&usecase.RemoveResult{RemovedEntryID: "ent-1", NewBalance: decimal.NewFromInt(7), AccountUpdated: true})
	assert.Equal(t, &RemoveTransactionResponse{ID: "ent-1", NewBalance: "7.00", AccountUpdated: true}, resp)
}
