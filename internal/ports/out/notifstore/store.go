package notifstore

import (
	"context"

	"github.com/wanderlist-app/reminder-api/internal/domain"
)

// Store persists per-user in-app notification records.
//
// Records are append-only from this service's point of view: the app layer
// owns reads/updates (marking read, deletion), we only write new entries.
type Store interface {
	Append(ctx context.Context, rec domain.Notification) error

	// ListByUser returns a user's records in append order.
	ListByUser(ctx context.Context, userID domain.UserID) ([]domain.Notification, error)
}
