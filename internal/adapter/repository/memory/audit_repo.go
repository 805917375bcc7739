package memory

import (
	"context"

	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository in memory.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// CreateTx stages an audit record.
func (r *AuditRepository) CreateTx(_ context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	l := *log
	return stage(tx, func(s *state) error {
		s.audit = append(s.audit, l)
		return nil
	})
}

// List returns matching audit logs, newest first.
func (r *AuditRepository) List(_ context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	logs := make([]*domain.AuditLog, 0)
	r.store.read(func(s *state) {
		for i := len(s.audit) - 1; i >= 0; i-- {
			l := s.audit[i]
			if filter.UserID != "" && l.UserID != filter.UserID {
				continue
			}
			if filter.ResourceType != "" && l.ResourceType != filter.ResourceType {
				continue
			}
			if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
				continue
			}
			logs = append(logs, &l)
		}
	})
	return window(logs, filter.Limit, filter.Offset), nil
}
