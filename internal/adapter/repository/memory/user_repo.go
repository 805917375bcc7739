package memory

import (
	"context"

	"github.com/VineetPaun/expense-management/internal/domain"
)

// UserRepository implements usecase.UserRepository in memory.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create inserts a user. Emails are unique.
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	u := *user
	return r.store.write(func(s *state) error {
		for _, existing := range s.users {
			if existing.Email == u.Email {
				return domain.ErrEmailTaken
			}
		}
		s.users[u.ID] = u
		return nil
	})
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	var (
		u  domain.User
		ok bool
	)
	r.store.read(func(s *state) { u, ok = s.users[id] })
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var found *domain.User
	r.store.read(func(s *state) {
		for _, u := range s.users {
			if u.Email == email {
				u := u
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, domain.ErrUserNotFound
	}
	return found, nil
}
