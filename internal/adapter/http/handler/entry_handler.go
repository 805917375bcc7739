package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/VineetPaun/expense-management/internal/adapter/http/dto"
	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	Apply(ctx context.Context, input usecase.ApplyEntryInput) (*domain.Entry, error)
	Amend(ctx context.Context, input usecase.AmendEntryInput) (*domain.Entry, error)
	Remove(ctx context.Context, entryID, userID string) (*usecase.RemoveResult, error)
	GetEntry(ctx context.Context, entryID, userID string) (*domain.Entry, error)
	ListForAccount(ctx context.Context, input usecase.ListEntriesInput) (*domain.Statement, error)
}

// EntryHandler handles transaction requests. Every balance change goes through it.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// Create records a transaction.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	entry, err := h.entryUC.Apply(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(entry))
}

// Get retrieves one of the caller's transactions.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	entry, err := h.entryUC.GetEntry(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(entry))
}

// Update amends a transaction.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	entry, err := h.entryUC.Amend(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(entry))
}

// Delete removes a transaction and undoes its effect on the balance.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.entryUC.Remove(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RemoveFromResult(result))
}

// ListByAccount returns a filtered, sorted page of an account's transactions with the
// summary and current balance.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := dto.ParseStatementQuery(r.URL.Query())

	stmt, err := h.entryUC.ListForAccount(r.Context(), usecase.ListEntriesInput{
		AccountID: chi.URLParam(r, "id"),
		UserID:    userID,
		Filter:    q.Filter,
		Sort:      q.Sort,
		Page:      q.Page,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(stmt))
}
