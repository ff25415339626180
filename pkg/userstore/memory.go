package userstore

import (
	"context"
	"sync"

	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/models"
)

// MemoryStore is an in-memory user store for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewMemoryStore creates a user store pre-loaded with the given users.
func NewMemoryStore(users ...models.User) *MemoryStore {
	s := &MemoryStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.Email] = u
	}
	return s
}

// GetByEmail returns the user with the given email.
func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return nil, domain.NewNotFoundError("user")
	}
	return &u, nil
}
