package reminders_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	memnotifstore "github.com/wanderlist-app/reminder-api/internal/adapters/memory/notifstore"
	mempushgateway "github.com/wanderlist-app/reminder-api/internal/adapters/memory/pushgateway"
	memtripstore "github.com/wanderlist-app/reminder-api/internal/adapters/memory/tripstore"
	memuserstore "github.com/wanderlist-app/reminder-api/internal/adapters/memory/userstore"
	"github.com/wanderlist-app/reminder-api/internal/app/reminders"
	"github.com/wanderlist-app/reminder-api/internal/domain"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fixture struct {
	trips   *memtripstore.Store
	users   *memuserstore.Store
	notifs  *memnotifstore.Store
	gateway *mempushgateway.Gateway
	svc     *reminders.Service
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		trips:   memtripstore.NewStore(),
		users:   memuserstore.NewStore(),
		notifs:  memnotifstore.NewStore(),
		gateway: mempushgateway.NewGateway(),
	}
	f.svc = reminders.NewService(f.trips, f.users, f.notifs, f.gateway, fixedClock{now: now}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	seq := 0
	f.svc.SetNewNotificationIDForTest(func() string {
		seq++
		return fmt.Sprintf("n-%d", seq)
	})
	return f
}

func (f *fixture) seedTrip(t *testing.T, tr domain.Trip) {
	t.Helper()
	if err := f.trips.Put(context.Background(), tr); err != nil {
		t.Fatalf("seed trip: %v", err)
	}
}

func (f *fixture) seedUser(t *testing.T, u domain.User) {
	t.Helper()
	if err := f.users.Put(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func startIn(now time.Time, d time.Duration) *time.Time {
	s := now.Add(d)
	return &s
}

func TestSweepSendsAndRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	f.seedUser(t, domain.User{ID: "u1", FCMToken: "tok-u1"})
	f.seedTrip(t, domain.Trip{
		ID:        "t1",
		Name:      "Lisbon",
		StartDate: startIn(now, 5*24*time.Hour),
		OwnerID:   "u1",
	})

	stats, err := f.svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Sent != 1 || stats.Failed != 0 {
		t.Fatalf("stats=%+v", stats)
	}

	sent := f.gateway.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	msg := sent[0]
	if msg.Token != "tok-u1" {
		t.Fatalf("token=%q", msg.Token)
	}
	if msg.Title != "Upcoming trip" {
		t.Fatalf("title=%q", msg.Title)
	}
	if !strings.Contains(msg.Body, "Lisbon") || !strings.Contains(msg.Body, "5 day(s)") {
		t.Fatalf("body=%q", msg.Body)
	}
	if msg.Data["tripId"] != "t1" || msg.Data["type"] != "trip_reminder" {
		t.Fatalf("data=%v", msg.Data)
	}

	trip, err := f.trips.GetByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if trip.NotifiedCount("u1") != 1 {
		t.Fatalf("notified count=%d, want 1", trip.NotifiedCount("u1"))
	}

	recs, err := f.notifs.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records=%d, want 1", len(recs))
	}
	rec := recs[0]
	if rec.TripID != "t1" || rec.Type != domain.NotificationTypeTripReminder || !rec.Notified || rec.Read {
		t.Fatalf("record=%+v", rec)
	}
	if !rec.CreatedAt.Equal(now) {
		t.Fatalf("createdAt=%v, want %v", rec.CreatedAt, now)
	}
}

func TestSweepIsIdempotentPerTripUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	f.seedUser(t, domain.User{ID: "u1", FCMToken: "tok-u1"})
	f.seedTrip(t, domain.Trip{ID: "t1", Name: "Lisbon", StartDate: startIn(now, 5*24*time.Hour), OwnerID: "u1"})

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Sweep(ctx); err != nil {
			t.Fatalf("Sweep %d: %v", i, err)
		}
	}

	if got := len(f.gateway.Sent()); got != 1 {
		t.Fatalf("sent %d messages across repeated sweeps, want 1", got)
	}
	trip, _ := f.trips.GetByID(ctx, "t1")
	if trip.NotifiedCount("u1") != 1 {
		t.Fatalf("notified count=%d, want 1", trip.NotifiedCount("u1"))
	}
}

func TestSweepFansOutToSharedUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	f.seedUser(t, domain.User{ID: "u1", FCMToken: "tok-u1"})
	f.seedUser(t, domain.User{ID: "u2", FCMToken: "tok-u2"})
	// Owner also appears in sharedWith; they still get exactly one reminder.
	f.seedTrip(t, domain.Trip{
		ID:         "t1",
		Name:       "Lisbon",
		StartDate:  startIn(now, 5*24*time.Hour),
		OwnerID:    "u1",
		SharedWith: []domain.UserID{"u2", "u1"},
	})

	stats, err := f.svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Recipients != 2 || stats.Sent != 2 {
		t.Fatalf("stats=%+v", stats)
	}

	tokens := map[string]int{}
	for _, m := range f.gateway.Sent() {
		tokens[m.Token]++
	}
	if tokens["tok-u1"] != 1 || tokens["tok-u2"] != 1 {
		t.Fatalf("token sends=%v", tokens)
	}
}

func TestSweepSkipsUnreachableRecipients(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	// u1 has no user record at all, u2 has a record but no token.
	f.seedUser(t, domain.User{ID: "u2"})
	f.seedTrip(t, domain.Trip{
		ID:         "t1",
		Name:       "Lisbon",
		StartDate:  startIn(now, 5*24*time.Hour),
		OwnerID:    "u1",
		SharedWith: []domain.UserID{"u2"},
	})

	stats, err := f.svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Sent != 0 || stats.Failed != 0 || stats.Skipped != 2 {
		t.Fatalf("stats=%+v", stats)
	}
	if len(f.gateway.Sent()) != 0 {
		t.Fatalf("sent=%v", f.gateway.Sent())
	}
}

func TestSweepSendFailureIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	f.seedUser(t, domain.User{ID: "u1", FCMToken: "tok-u1"})
	f.seedUser(t, domain.User{ID: "u2", FCMToken: "tok-u2"})
	f.seedTrip(t, domain.Trip{
		ID:         "t1",
		Name:       "Lisbon",
		StartDate:  startIn(now, 5*24*time.Hour),
		OwnerID:    "u1",
		SharedWith: []domain.UserID{"u2"},
	})
	f.gateway.FailToken("tok-u1", errors.New("downstream unavailable"))

	stats, err := f.svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Sent != 1 || stats.Failed != 1 {
		t.Fatalf("stats=%+v", stats)
	}

	// The failed recipient must have no record and no ledger entry, so a later
	// sweep inside the window retries them.
	trip, _ := f.trips.GetByID(ctx, "t1")
	if trip.NotifiedCount("u1") != 0 || trip.NotifiedCount("u2") != 1 {
		t.Fatalf("notified=%v", trip.Notified)
	}
	recs, _ := f.notifs.ListByUser(ctx, "u1")
	if len(recs) != 0 {
		t.Fatalf("failed recipient has %d records", len(recs))
	}

	f.gateway.FailToken("tok-u1", nil)
	stats, err = f.svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Sent != 1 || stats.Failed != 0 {
		t.Fatalf("retry stats=%+v", stats)
	}
	trip, _ = f.trips.GetByID(ctx, "t1")
	if trip.NotifiedCount("u1") != 1 {
		t.Fatalf("notified after retry=%v", trip.Notified)
	}
}

func TestSweepDryRunMakesNoWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	f.seedUser(t, domain.User{ID: "u1", FCMToken: "tok-u1"})
	f.seedTrip(t, domain.Trip{ID: "t1", Name: "Lisbon", StartDate: startIn(now, 5*24*time.Hour), OwnerID: "u1"})

	f.svc.DryRun = true
	stats, err := f.svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Sent != 1 {
		t.Fatalf("stats=%+v, want one due pair reported", stats)
	}

	// Nothing was sent and, critically, nothing was written: the ledger and
	// record store must be untouched so a real sweep still delivers.
	if len(f.gateway.Sent()) != 0 {
		t.Fatalf("dry run reached the gateway: %v", f.gateway.Sent())
	}
	trip, _ := f.trips.GetByID(ctx, "t1")
	if trip.NotifiedCount("u1") != 0 {
		t.Fatalf("dry run incremented ledger: %v", trip.Notified)
	}
	recs, _ := f.notifs.ListByUser(ctx, "u1")
	if len(recs) != 0 {
		t.Fatalf("dry run appended %d records", len(recs))
	}

	f.svc.DryRun = false
	stats, err = f.svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Sent != 1 || len(f.gateway.Sent()) != 1 {
		t.Fatalf("real sweep after dry run: stats=%+v, sent=%d", stats, len(f.gateway.Sent()))
	}
	trip, _ = f.trips.GetByID(ctx, "t1")
	if trip.NotifiedCount("u1") != 1 {
		t.Fatalf("notified after real sweep=%v", trip.Notified)
	}
}

func TestSweepOutsideWindowDoesNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	f.seedUser(t, domain.User{ID: "u1", FCMToken: "tok-u1"})
	f.seedTrip(t, domain.Trip{ID: "far", Name: "Far", StartDate: startIn(now, 30*24*time.Hour), OwnerID: "u1"})
	f.seedTrip(t, domain.Trip{ID: "past", Name: "Past", StartDate: startIn(now, -24*time.Hour), OwnerID: "u1"})
	f.seedTrip(t, domain.Trip{ID: "draft", Name: "Draft", OwnerID: "u1"})

	stats, err := f.svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Trips != 3 || stats.Sent != 0 || stats.Failed != 0 {
		t.Fatalf("stats=%+v", stats)
	}
	if len(f.gateway.Sent()) != 0 {
		t.Fatalf("sent=%v", f.gateway.Sent())
	}
}

func TestSweepHonorsTripThreshold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	userDays := 7
	f.seedUser(t, domain.User{ID: "u1", FCMToken: "tok-u1", NotificationDays: &userDays})

	// Trip-level threshold of 2 overrides the user's 7: a trip five days out
	// is not yet due, a trip two days out is.
	tripDays := 2
	f.seedTrip(t, domain.Trip{ID: "t-late", Name: "Late", StartDate: startIn(now, 5*24*time.Hour), OwnerID: "u1", NotificationDays: &tripDays})
	f.seedTrip(t, domain.Trip{ID: "t-due", Name: "Due", StartDate: startIn(now, 2*24*time.Hour), OwnerID: "u1", NotificationDays: &tripDays})
	// No trip-level value: the user's 7 applies.
	f.seedTrip(t, domain.Trip{ID: "t-user", Name: "UserPref", StartDate: startIn(now, 7*24*time.Hour), OwnerID: "u1"})

	stats, err := f.svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Sent != 2 {
		t.Fatalf("stats=%+v", stats)
	}

	byTrip := map[string]bool{}
	for _, m := range f.gateway.Sent() {
		byTrip[m.Data["tripId"]] = true
	}
	if !byTrip["t-due"] || !byTrip["t-user"] || byTrip["t-late"] {
		t.Fatalf("sent for trips=%v", byTrip)
	}
}
