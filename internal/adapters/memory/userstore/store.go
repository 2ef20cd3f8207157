package userstore

import (
	"context"
	"sync"

	"github.com/wanderlist-app/reminder-api/internal/domain"
	"github.com/wanderlist-app/reminder-api/internal/ports/out/userstore"
)

// Store is an in-memory implementation of userstore.Store.
// It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	byID map[domain.UserID]domain.User
}

func NewStore() *Store {
	return &Store{
		byID: make(map[domain.UserID]domain.User),
	}
}

// Put creates or replaces a user record. It models the app layer's write
// path; the reminder core only reads users.
func (s *Store) Put(ctx context.Context, u domain.User) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[u.ID] = cloneUser(u)
	return nil
}

func (s *Store) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return domain.User{}, userstore.ErrNotFound
	}
	return cloneUser(u), nil
}

func cloneUser(u domain.User) domain.User {
	cp := u
	if u.NotificationDays != nil {
		nd := *u.NotificationDays
		cp.NotificationDays = &nd
	}
	return cp
}
