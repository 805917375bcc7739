package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/VineetPaun/expense-management/internal/adapter/http/dto"
	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// ReconciliationService defines the behavior needed by LedgerHandler.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// AccountGetter resolves an account owned by a user.
type AccountGetter interface {
	GetAccount(ctx context.Context, id, userID string) (*domain.Account, error)
}

// LedgerHandler handles reconciliation and ledger-wide checks.
type LedgerHandler struct {
	reconciler ReconciliationService
	accounts   AccountGetter
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconciler ReconciliationService, accounts AccountGetter) *LedgerHandler {
	return &LedgerHandler{reconciler: reconciler, accounts: accounts}
}

// CheckConsistency reports every account whose balance does not match its history.
// Nothing is repaired.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if !report.LedgerConsistent || len(report.Discrepancies) > 0 {
		status = http.StatusConflict
	}
	writeJSON(w, status, dto.ReportFromDomain(report))
}

// Reconcile recomputes one of the caller's accounts from its entries and repairs any
// drift.
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	accountID := chi.URLParam(r, "id")
	if _, err := h.accounts.GetAccount(r.Context(), accountID, userID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	result, err := h.reconciler.ReconcileAccount(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}
