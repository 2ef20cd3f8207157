package tripstore

import (
	"context"
	"sort"
	"sync"

	"github.com/wanderlist-app/reminder-api/internal/domain"
	"github.com/wanderlist-app/reminder-api/internal/ports/out/tripstore"
)

// Store is an in-memory implementation of tripstore.Store.
// It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	byID map[domain.TripID]domain.Trip
}

func NewStore() *Store {
	return &Store{
		byID: make(map[domain.TripID]domain.Trip),
	}
}

// Put creates or replaces a trip. It models the write path of the app layer
// that owns trip records; the reminder core itself only calls the
// tripstore.Store methods.
func (s *Store) Put(ctx context.Context, t domain.Trip) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[t.ID] = cloneTrip(t)
	return nil
}

func (s *Store) List(ctx context.Context) ([]domain.Trip, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Trip, 0, len(s.byID))
	for _, t := range s.byID {
		out = append(out, cloneTrip(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return domain.Trip{}, tripstore.ErrNotFound
	}
	return cloneTrip(t), nil
}

func (s *Store) IncrementNotified(ctx context.Context, tripID domain.TripID, userID domain.UserID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[tripID]
	if !ok {
		return tripstore.ErrNotFound
	}
	// Copy-on-write so concurrent readers holding a clone never observe the
	// mutation, mirroring a per-field store update.
	m := make(map[domain.UserID]int, len(t.Notified)+1)
	for k, v := range t.Notified {
		m[k] = v
	}
	m[userID]++
	t.Notified = m
	s.byID[tripID] = t
	return nil
}

func cloneTrip(t domain.Trip) domain.Trip {
	cp := t
	if t.StartDate != nil {
		sd := *t.StartDate
		cp.StartDate = &sd
	}
	if t.NotificationDays != nil {
		nd := *t.NotificationDays
		cp.NotificationDays = &nd
	}
	if t.SharedWith != nil {
		cp.SharedWith = append([]domain.UserID(nil), t.SharedWith...)
	}
	if t.Notified != nil {
		m := make(map[domain.UserID]int, len(t.Notified))
		for k, v := range t.Notified {
			m[k] = v
		}
		cp.Notified = m
	}
	return cp
}
