package userstore

import (
	"context"

	"github.com/wanderlist-app/reminder-api/internal/domain"
)

// Store provides read access to the user documents the app layer maintains.
type Store interface {
	GetByID(ctx context.Context, id domain.UserID) (domain.User, error)
}
