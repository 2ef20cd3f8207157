package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wanderlist-app/reminder-api/internal/domain"
	"github.com/wanderlist-app/reminder-api/internal/ports/out/userstore"
)

// Store is a Postgres implementation of userstore.Store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	var (
		token *string
		days  *int
	)
	err := s.pool.QueryRow(ctx,
		`SELECT fcm_token, notification_days FROM users WHERE id = $1`, string(id),
	).Scan(&token, &days)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, userstore.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user %s: %w", id, err)
	}

	u := domain.User{ID: id, NotificationDays: days}
	if token != nil {
		u.FCMToken = *token
	}
	return u, nil
}

// Put creates or replaces a user record. It models the app layer's write path
// and backs seeding in contract tests.
func (s *Store) Put(ctx context.Context, u domain.User) error {
	var token *string
	if u.FCMToken != "" {
		token = &u.FCMToken
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, fcm_token, notification_days)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			fcm_token = EXCLUDED.fcm_token,
			notification_days = EXCLUDED.notification_days
	`, string(u.ID), token, u.NotificationDays)
	if err != nil {
		return fmt.Errorf("put user %s: %w", u.ID, err)
	}
	return nil
}
