package notifstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wanderlist-app/reminder-api/internal/domain"
)

// Store is a Postgres implementation of notifstore.Store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Append(ctx context.Context, rec domain.Notification) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, trip_id, type, title, body, read, notified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		rec.ID,
		string(rec.UserID),
		string(rec.TripID),
		string(rec.Type),
		rec.Title,
		rec.Body,
		rec.Read,
		rec.Notified,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append notification %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.Notification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, trip_id, type, title, body, read, notified, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at, id
	`, string(userID))
	if err != nil {
		return nil, fmt.Errorf("list notifications for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var (
			rec          domain.Notification
			uid, tid, ty string
		)
		if err := rows.Scan(&rec.ID, &uid, &tid, &ty, &rec.Title, &rec.Body, &rec.Read, &rec.Notified, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		rec.UserID = domain.UserID(uid)
		rec.TripID = domain.TripID(tid)
		rec.Type = domain.NotificationType(ty)
		out = append(out, rec)
	}
	return out, rows.Err()
}
