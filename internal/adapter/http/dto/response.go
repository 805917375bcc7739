package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// money renders an amount with two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(domain.AmountScale)
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string    `json:"id"`
	BankName       string    `json:"bank_name"`
	AccountType    string    `json:"account_type"`
	AccountNumber  string    `json:"account_number,omitempty"`
	Currency       string    `json:"currency"`
	Balance        string    `json:"balance"`
	OpeningBalance string    `json:"opening_balance"`
	Version        int64     `json:"version"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		BankName:       string(a.BankName),
		AccountType:    string(a.AccountType),
		AccountNumber:  a.AccountNumber,
		Currency:       a.Currency,
		Balance:        money(a.Balance),
		OpeningBalance: money(a.OpeningBalance),
		Version:        a.Version,
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int                `json:"total"`
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	Sequence       int64     `json:"sequence"`
	Amount         string    `json:"amount"`
	Type           string    `json:"type"`
	Category       string    `json:"category"`
	Description    string    `json:"description,omitempty"`
	Reference      string    `json:"reference,omitempty"`
	OpeningBalance string    `json:"opening_balance"`
	ClosingBalance string    `json:"closing_balance"`
	EntryDate      time.Time `json:"entry_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TransactionFromDomain converts domain entry to response.
func TransactionFromDomain(e *domain.Entry) *TransactionResponse {
	return &TransactionResponse{
		ID:             e.ID,
		AccountID:      e.AccountID,
		Sequence:       e.Sequence,
		Amount:         money(e.Amount),
		Type:           string(e.Direction),
		Category:       string(e.Category),
		Description:    e.Description,
		Reference:      e.Reference,
		OpeningBalance: money(e.OpeningBalance),
		ClosingBalance: money(e.ClosingBalance),
		EntryDate:      e.EntryDate,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain entries to responses.
func TransactionsFromDomain(entries []*domain.Entry) []*TransactionResponse {
	result := make([]*TransactionResponse, len(entries))
	for i, e := range entries {
		result[i] = TransactionFromDomain(e)
	}
	return result
}

// RemoveTransactionResponse is returned after an entry is removed.
type RemoveTransactionResponse struct {
	ID             string `json:"id"`
	NewBalance     string `json:"new_balance"`
	AccountUpdated bool   `json:"account_updated"`
}

// RemoveFromResult converts a removal result to response.
func RemoveFromResult(r *usecase.RemoveResult) *RemoveTransactionResponse {
	return &RemoveTransactionResponse{
		ID:             r.RemovedEntryID,
		NewBalance:     money(r.NewBalance),
		AccountUpdated: r.AccountUpdated,
	}
}

// PaginationResponse describes where a page sits in the full listing.
type PaginationResponse struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

// SummaryResponse aggregates all entries matching the listing filters.
type SummaryResponse struct {
	TotalCredit string `json:"total_credit"`
	CreditCount int    `json:"credit_count"`
	TotalDebit  string `json:"total_debit"`
	DebitCount  int    `json:"debit_count"`
	NetFlow     string `json:"net_flow"`
}

// StatementResponse is one page of an account's transactions.
type StatementResponse struct {
	Transactions   []*TransactionResponse `json:"transactions"`
	Pagination     PaginationResponse     `json:"pagination"`
	Summary        SummaryResponse        `json:"summary"`
	CurrentBalance string                 `json:"current_balance"`
}

// StatementFromDomain converts a statement to response.
func StatementFromDomain(s *domain.Statement) *StatementResponse {
	return &StatementResponse{
		Transactions: TransactionsFromDomain(s.Entries),
		Pagination: PaginationResponse{
			CurrentPage: s.Page.CurrentPage,
			TotalPages:  s.Page.TotalPages,
			TotalCount:  s.Page.TotalCount,
			Limit:       s.Page.Limit,
			HasNextPage: s.Page.HasNextPage,
			HasPrevPage: s.Page.HasPrevPage,
		},
		Summary: SummaryResponse{
			TotalCredit: money(s.Summary.TotalCredit),
			CreditCount: s.Summary.CreditCount,
			TotalDebit:  money(s.Summary.TotalDebit),
			DebitCount:  s.Summary.DebitCount,
			NetFlow:     money(s.Summary.NetFlow),
		},
		CurrentBalance: money(s.CurrentBalance),
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

// LoginResponse carries the access token.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// AuditLogResponse represents an audit record.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			Action:       string(l.Action),
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// ReconciliationResponse is the outcome of reconciling one account.
type ReconciliationResponse struct {
	AccountID         string    `json:"account_id"`
	RecordedBalance   string    `json:"recorded_balance"`
	CalculatedBalance string    `json:"calculated_balance"`
	Difference        string    `json:"difference"`
	BrokenEntries     []string  `json:"broken_entries,omitempty"`
	EntryCount        int       `json:"entry_count"`
	IsReconciled      bool      `json:"is_reconciled"`
	Repaired          bool      `json:"repaired"`
	CheckedAt         time.Time `json:"checked_at"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   money(r.RecordedBalance),
		CalculatedBalance: money(r.CalculatedBalance),
		Difference:        money(r.Difference),
		BrokenEntries:     r.BrokenEntries,
		EntryCount:        r.EntryCount,
		IsReconciled:      r.IsReconciled,
		Repaired:          r.Repaired,
		CheckedAt:         r.LastChecked,
	}
}

// ConsistencyReportResponse summarizes a ledger-wide check.
type ConsistencyReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	LedgerConsistent   bool                      `json:"ledger_consistent"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReportFromDomain converts a reconciliation report to response.
func ReportFromDomain(r *usecase.ReconciliationReport) *ConsistencyReportResponse {
	resp := &ConsistencyReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		LedgerConsistent:   r.LedgerConsistent,
		Discrepancies:      make([]*ReconciliationResponse, len(r.Discrepancies)),
		CheckedAt:          r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationFromResult(d)
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Field   string            `json:"field,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}
