package tripstore

import (
	"context"

	"github.com/wanderlist-app/reminder-api/internal/domain"
)

// Store provides read access to the trip documents the app layer maintains,
// plus the single write this service performs: the reminder ledger increment.
type Store interface {
	// List returns every trip record. The sweep filters in memory; no
	// query-level filtering is applied.
	List(ctx context.Context) ([]domain.Trip, error)

	GetByID(ctx context.Context, id domain.TripID) (domain.Trip, error)

	// IncrementNotified adds one to the trip's notified counter for userID.
	// The update is scoped to that single counter field: concurrent
	// increments for other users on the same trip are never lost.
	IncrementNotified(ctx context.Context, tripID domain.TripID, userID domain.UserID) error
}
