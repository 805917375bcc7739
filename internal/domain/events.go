package domain

import "time"

// Event types
const (
	EventTypeEntryCreated       = "transaction.created"
	EventTypeEntryUpdated       = "transaction.updated"
	EventTypeEntryDeleted       = "transaction.deleted"
	EventTypeAccountOpened      = "account.opened"
	EventTypeAccountDeactivated = "account.deactivated"
	EventTypeAccountReconciled  = "account.reconciled"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
	AggregateTypeEntry   = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// EntryEvent is the payload of transaction.* events.
type EntryEvent struct {
	EntryID   string `json:"entry_id"`
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
	Amount    string `json:"amount"`
	Direction string `json:"direction"`
	Category  string `json:"category"`
	Balance   string `json:"balance"`
	EventAt   string `json:"event_at"`
}

// AccountEvent is the payload of account.* events.
type AccountEvent struct {
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
	BankName  string `json:"bank_name"`
	Currency  string `json:"currency"`
	Balance   string `json:"balance"`
	EventAt   string `json:"event_at"`
}

// NewEntryEvent builds an outbox event for an entry mutation. balance is the account
// balance after the mutation.
func NewEntryEvent(id, eventType string, e *Entry, balance string, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   e.ID,
		AggregateType: AggregateTypeEntry,
		EventType:     eventType,
		Payload: MarshalState(EntryEvent{
			EntryID:   e.ID,
			AccountID: e.AccountID,
			UserID:    e.UserID,
			Amount:    e.Amount.StringFixed(AmountScale),
			Direction: string(e.Direction),
			Category:  string(e.Category),
			Balance:   balance,
			EventAt:   at.UTC().Format(time.RFC3339Nano),
		}),
		CreatedAt: at,
	}
}

// NewAccountEvent builds an outbox event for an account lifecycle change.
func NewAccountEvent(id, eventType string, a *Account, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   a.ID,
		AggregateType: AggregateTypeAccount,
		EventType:     eventType,
		Payload: MarshalState(AccountEvent{
			AccountID: a.ID,
			UserID:    a.UserID,
			BankName:  string(a.BankName),
			Currency:  a.Currency,
			Balance:   a.Balance.StringFixed(AmountScale),
			EventAt:   at.UTC().Format(time.RFC3339Nano),
		}),
		CreatedAt: at,
	}
}
