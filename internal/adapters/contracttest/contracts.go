// Package contracttest holds store contract suites shared by the memory and
// postgres adapters, so both backends prove the same semantics.
package contracttest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wanderlist-app/reminder-api/internal/domain"
	notifstoreport "github.com/wanderlist-app/reminder-api/internal/ports/out/notifstore"
	tripstoreport "github.com/wanderlist-app/reminder-api/internal/ports/out/tripstore"
	userstoreport "github.com/wanderlist-app/reminder-api/internal/ports/out/userstore"
)

type CleanupFunc = func()

// Factories return the store under test plus a seed function modeling the app
// layer's write path (the ports themselves are read-mostly).
type TripStoreFactory func(t *testing.T) (tripstoreport.Store, func(domain.Trip), CleanupFunc)
type UserStoreFactory func(t *testing.T) (userstoreport.Store, func(domain.User), CleanupFunc)
type NotifStoreFactory func(t *testing.T) (notifstoreport.Store, CleanupFunc)

func RunTripStore(t *testing.T, newStore TripStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, seed, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	if _, err := store.GetByID(ctx, "missing"); err != tripstoreport.ErrNotFound {
		t.Fatalf("GetByID missing: err=%v, want ErrNotFound", err)
	}
	if err := store.IncrementNotified(ctx, "missing", "u1"); err != tripstoreport.ErrNotFound {
		t.Fatalf("IncrementNotified missing: err=%v, want ErrNotFound", err)
	}

	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	days := 3
	seed(domain.Trip{
		ID:               "t1",
		Name:             "Lisbon",
		StartDate:        &start,
		OwnerID:          "u1",
		SharedWith:       []domain.UserID{"u2", "u3"},
		NotificationDays: &days,
	})
	seed(domain.Trip{ID: "t2", Name: "Backlog", OwnerID: "u1"})

	got, err := store.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Lisbon" || got.OwnerID != "u1" {
		t.Fatalf("trip=%+v", got)
	}
	if got.StartDate == nil || !got.StartDate.Equal(start) {
		t.Fatalf("startDate=%v, want %v", got.StartDate, start)
	}
	if got.NotificationDays == nil || *got.NotificationDays != 3 {
		t.Fatalf("notificationDays=%v", got.NotificationDays)
	}
	if len(got.SharedWith) != 2 || got.SharedWith[0] != "u2" || got.SharedWith[1] != "u3" {
		t.Fatalf("sharedWith=%v", got.SharedWith)
	}
	if got.NotifiedCount("u1") != 0 {
		t.Fatalf("fresh trip notified count = %d, want 0", got.NotifiedCount("u1"))
	}

	t2, err := store.GetByID(ctx, "t2")
	if err != nil {
		t.Fatalf("GetByID t2: %v", err)
	}
	if t2.StartDate != nil || t2.NotificationDays != nil {
		t.Fatalf("t2 optional fields not empty: %+v", t2)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("List len=%d, want 2", len(all))
	}

	// Counter semantics: increments are per user and cumulative.
	if err := store.IncrementNotified(ctx, "t1", "u1"); err != nil {
		t.Fatalf("IncrementNotified: %v", err)
	}
	if err := store.IncrementNotified(ctx, "t1", "u1"); err != nil {
		t.Fatalf("IncrementNotified: %v", err)
	}
	if err := store.IncrementNotified(ctx, "t1", "u2"); err != nil {
		t.Fatalf("IncrementNotified: %v", err)
	}
	got, err = store.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.NotifiedCount("u1") != 2 || got.NotifiedCount("u2") != 1 || got.NotifiedCount("u3") != 0 {
		t.Fatalf("notified=%v", got.Notified)
	}

	// Concurrent increments for different users on the same trip must all land.
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		for _, uid := range []domain.UserID{"u2", "u3"} {
			wg.Add(1)
			go func(uid domain.UserID) {
				defer wg.Done()
				_ = store.IncrementNotified(ctx, "t1", uid)
			}(uid)
		}
	}
	wg.Wait()
	got, err = store.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.NotifiedCount("u2") != 6 || got.NotifiedCount("u3") != 5 {
		t.Fatalf("after concurrent increments notified=%v", got.Notified)
	}
}

func RunUserStore(t *testing.T, newStore UserStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, seed, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	if _, err := store.GetByID(ctx, "missing"); err != userstoreport.ErrNotFound {
		t.Fatalf("GetByID missing: err=%v, want ErrNotFound", err)
	}

	days := 2
	seed(domain.User{ID: "u1", FCMToken: "tok-1", NotificationDays: &days})
	seed(domain.User{ID: "u2"})

	got, err := store.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FCMToken != "tok-1" || got.NotificationDays == nil || *got.NotificationDays != 2 {
		t.Fatalf("user=%+v", got)
	}

	got, err = store.GetByID(ctx, "u2")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FCMToken != "" || got.NotificationDays != nil {
		t.Fatalf("tokenless user=%+v", got)
	}
}

func RunNotifStore(t *testing.T, newStore NotifStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	recs, err := store.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("fresh store has %d records", len(recs))
	}

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, rec := range []domain.Notification{
		{ID: "n1", UserID: "u1", TripID: "t1", Type: domain.NotificationTypeTripReminder, Title: "Upcoming trip", Body: "b1", Notified: true},
		{ID: "n2", UserID: "u1", TripID: "t2", Type: domain.NotificationTypeTripReminder, Title: "Upcoming trip", Body: "b2", Notified: true},
		{ID: "n3", UserID: "u2", TripID: "t1", Type: domain.NotificationTypeTripReminder, Title: "Upcoming trip", Body: "b3", Notified: true},
	} {
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append %s: %v", rec.ID, err)
		}
	}

	recs, err = store.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "n1" || recs[1].ID != "n2" {
		t.Fatalf("u1 records=%+v", recs)
	}
	if recs[0].TripID != "t1" || !recs[0].Notified || recs[0].Read {
		t.Fatalf("record=%+v", recs[0])
	}

	recs, err = store.ListByUser(ctx, "u2")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "n3" {
		t.Fatalf("u2 records=%+v", recs)
	}
}
