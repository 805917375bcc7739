package memory

import (
	"context"
	"time"

	"github.com/VineetPaun/expense-management/internal/domain"
	"github.com/VineetPaun/expense-management/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository in memory.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stages an event.
func (r *OutboxRepository) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	e := *event
	return stage(tx, func(s *state) error {
		s.outbox = append(s.outbox, e)
		return nil
	})
}

// GetUnpublished returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	events := make([]*domain.OutboxEvent, 0)
	r.store.read(func(s *state) {
		for _, e := range s.outbox {
			if e.Published {
				continue
			}
			e := e
			events = append(events, &e)
		}
	})
	return window(events, limit, 0), nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	return r.store.write(func(s *state) error {
		for i := range s.outbox {
			if s.outbox[i].ID == id {
				at := publishedAt
				s.outbox[i].Published = true
				s.outbox[i].PublishedAt = &at
				return nil
			}
		}
		return nil
	})
}

// DeletePublished removes events published before the given time.
func (r *OutboxRepository) DeletePublished(_ context.Context, before time.Time) error {
	return r.store.write(func(s *state) error {
		kept := s.outbox[:0]
		for _, e := range s.outbox {
			if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
				continue
			}
			kept = append(kept, e)
		}
		s.outbox = kept
		return nil
	})
}
