package notifstore

import (
	"context"
	"sync"

	"github.com/wanderlist-app/reminder-api/internal/domain"
)

// Store is an in-memory implementation of notifstore.Store.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	byUser map[domain.UserID][]domain.Notification
}

func NewStore() *Store {
	return &Store{
		byUser: make(map[domain.UserID][]domain.Notification),
	}
}

func (s *Store) Append(ctx context.Context, rec domain.Notification) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[rec.UserID] = append(s.byUser[rec.UserID], rec)
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.Notification, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Notification(nil), s.byUser[userID]...), nil
}
