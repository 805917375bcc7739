package domain

import (
	"encoding/json"
	"time"
)

// AuditLog records who changed which account or transaction, with before/after state.
type AuditLog struct {
	ID           string
	UserID       string
	Action       AuditAction
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Account actions
	AuditActionAccountOpen       AuditAction = "account.open"
	AuditActionAccountUpdate     AuditAction = "account.update"
	AuditActionAccountDeactivate AuditAction = "account.deactivate"
	AuditActionAccountReconcile  AuditAction = "account.reconcile"

	// Transaction actions
	AuditActionEntryCreate AuditAction = "transaction.create"
	AuditActionEntryUpdate AuditAction = "transaction.update"
	AuditActionEntryDelete AuditAction = "transaction.delete"
)

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	UserID       string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// EntryState is the audited view of an entry.
func EntryState(e *Entry) JSON {
	if e == nil {
		return nil
	}
	return JSON{
		"account_id":      e.AccountID,
		"sequence":        e.Sequence,
		"amount":          e.Amount.StringFixed(AmountScale),
		"type":            string(e.Direction),
		"category":        string(e.Category),
		"description":     e.Description,
		"reference":       e.Reference,
		"opening_balance": e.OpeningBalance.StringFixed(AmountScale),
		"closing_balance": e.ClosingBalance.StringFixed(AmountScale),
		"entry_date":      e.EntryDate.UTC().Format(time.RFC3339),
	}
}

// AccountState is the audited view of an account.
func AccountState(a *Account) JSON {
	if a == nil {
		return nil
	}
	return JSON{
		"bank_name":      string(a.BankName),
		"account_type":   string(a.AccountType),
		"account_number": a.AccountNumber,
		"currency":       a.Currency,
		"balance":        a.Balance.StringFixed(AmountScale),
		"version":        a.Version,
		"is_active":      a.IsActive,
	}
}
