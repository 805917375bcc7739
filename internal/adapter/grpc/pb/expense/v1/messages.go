package expensev1

import "time"

// Account is an account as returned over gRPC. Money is a decimal string.
type Account struct {
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

// Entry is a transaction with its balance snapshots.
type Entry struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	Sequence       int64     `json:"sequence"`
	Amount         string    `json:"amount"`
	Direction      string    `json:"direction"`
	Category       string    `json:"category"`
	Description    string    `json:"description,omitempty"`
	Reference      string    `json:"reference,omitempty"`
	OpeningBalance string    `json:"opening_balance"`
	ClosingBalance string    `json:"closing_balance"`
	EntryDate      time.Time `json:"entry_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type GetAccountRequest struct {
	AccountID string `json:"account_id"`
}

type GetAccountResponse struct {
	Account *Account `json:"account"`
}

type ApplyEntryRequest struct {
	AccountID   string     `json:"account_id"`
	Amount      string     `json:"amount"`
	Direction   string     `json:"direction"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
	Reference   string     `json:"reference,omitempty"`
	EntryDate   *time.Time `json:"entry_date,omitempty"`
}

// AmendEntryRequest replaces amount, direction and category. Nil optional fields keep
// their current value.
type AmendEntryRequest struct {
	EntryID     string     `json:"entry_id"`
	Amount      string     `json:"amount"`
	Direction   string     `json:"direction"`
	Category    string     `json:"category"`
	Description *string    `json:"description,omitempty"`
	Reference   *string    `json:"reference,omitempty"`
	EntryDate   *time.Time `json:"entry_date,omitempty"`
}

type EntryResponse struct {
	Entry *Entry `json:"entry"`
}

type RemoveEntryRequest struct {
	EntryID string `json:"entry_id"`
}

type RemoveEntryResponse struct {
	RemovedEntryID string `json:"removed_entry_id"`
	NewBalance     string `json:"new_balance"`
	AccountUpdated bool   `json:"account_updated"`
}

// ListEntriesRequest filters, sorts and pages an account's entries. Empty fields are
// ignored.
type ListEntriesRequest struct {
	AccountID string     `json:"account_id"`
	Search    string     `json:"search,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Direction string     `json:"direction,omitempty"`
	Category  string     `json:"category,omitempty"`
	MinAmount string     `json:"min_amount,omitempty"`
	MaxAmount string     `json:"max_amount,omitempty"`
	SortBy    string     `json:"sort_by,omitempty"`
	SortOrder string     `json:"sort_order,omitempty"`
	Page      int        `json:"page,omitempty"`
	Limit     int        `json:"limit,omitempty"`
}

type PageInfo struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

type Summary struct {
	TotalCredit string `json:"total_credit"`
	CreditCount int    `json:"credit_count"`
	TotalDebit  string `json:"total_debit"`
	DebitCount  int    `json:"debit_count"`
	NetFlow     string `json:"net_flow"`
}

type ListEntriesResponse struct {
	Entries        []*Entry `json:"entries"`
	Page           PageInfo `json:"page"`
	Summary        Summary  `json:"summary"`
	CurrentBalance string   `json:"current_balance"`
}
