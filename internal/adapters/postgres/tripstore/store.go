package tripstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wanderlist-app/reminder-api/internal/domain"
	"github.com/wanderlist-app/reminder-api/internal/ports/out/tripstore"
)

// Store is a Postgres implementation of tripstore.Store. The notified ledger
// lives in a jsonb column keyed by user id.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const tripColumns = `id, name, start_date, owner_id, shared_with, notification_days, notified`

func (s *Store) List(ctx context.Context) ([]domain.Trip, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var out []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetByID(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, string(id))
	t, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, tripstore.ErrNotFound
		}
		return domain.Trip{}, fmt.Errorf("get trip %s: %w", id, err)
	}
	return t, nil
}

// IncrementNotified bumps the per-user counter inside the notified jsonb in a
// single UPDATE, so concurrent increments for other users on the same trip
// are never lost.
func (s *Store) IncrementNotified(ctx context.Context, tripID domain.TripID, userID domain.UserID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE trips
		SET notified = jsonb_set(
			COALESCE(notified, '{}'::jsonb),
			ARRAY[$2],
			to_jsonb(COALESCE((notified ->> $2)::int, 0) + 1)
		)
		WHERE id = $1
	`, string(tripID), string(userID))
	if err != nil {
		return fmt.Errorf("increment notified %s/%s: %w", tripID, userID, err)
	}
	if tag.RowsAffected() == 0 {
		return tripstore.ErrNotFound
	}
	return nil
}

// Put creates or replaces a trip. It models the write path of the app layer
// that owns trip records and backs seeding in contract tests.
func (s *Store) Put(ctx context.Context, t domain.Trip) error {
	shared := make([]string, 0, len(t.SharedWith))
	for _, id := range t.SharedWith {
		shared = append(shared, string(id))
	}
	notified := make(map[string]int, len(t.Notified))
	for k, v := range t.Notified {
		notified[string(k)] = v
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO trips (id, name, start_date, owner_id, shared_with, notification_days, notified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			start_date = EXCLUDED.start_date,
			owner_id = EXCLUDED.owner_id,
			shared_with = EXCLUDED.shared_with,
			notification_days = EXCLUDED.notification_days,
			notified = EXCLUDED.notified
	`, string(t.ID), t.Name, utcPtr(t.StartDate), string(t.OwnerID), shared, t.NotificationDays, notified)
	if err != nil {
		return fmt.Errorf("put trip %s: %w", t.ID, err)
	}
	return nil
}

func scanTrip(row pgx.Row) (domain.Trip, error) {
	var (
		id       string
		name     string
		start    *time.Time
		owner    string
		shared   []string
		days     *int
		notified map[string]int
	)
	if err := row.Scan(&id, &name, &start, &owner, &shared, &days, &notified); err != nil {
		return domain.Trip{}, err
	}

	t := domain.Trip{
		ID:               domain.TripID(id),
		Name:             name,
		StartDate:        start,
		OwnerID:          domain.UserID(owner),
		NotificationDays: days,
	}
	for _, uid := range shared {
		t.SharedWith = append(t.SharedWith, domain.UserID(uid))
	}
	if len(notified) > 0 {
		t.Notified = make(map[domain.UserID]int, len(notified))
		for k, v := range notified {
			t.Notified[domain.UserID(k)] = v
		}
	}
	return t, nil
}

func utcPtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := p.UTC()
	return &v
}
