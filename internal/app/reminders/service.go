package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wanderlist-app/reminder-api/internal/domain"
	clockport "github.com/wanderlist-app/reminder-api/internal/ports/out/clock"
	"github.com/wanderlist-app/reminder-api/internal/ports/out/notifstore"
	"github.com/wanderlist-app/reminder-api/internal/ports/out/pushgateway"
	"github.com/wanderlist-app/reminder-api/internal/ports/out/tripstore"
	"github.com/wanderlist-app/reminder-api/internal/ports/out/userstore"
)

const reminderTitle = "Upcoming trip"

// Service runs the reminder sweep: it enumerates trips, resolves recipients,
// evaluates eligibility, and dispatches at most one reminder per trip/user
// pair.
type Service struct {
	trips   tripstore.Store
	users   userstore.Store
	notifs  notifstore.Store
	gateway pushgateway.Gateway
	clk     clockport.Clock
	logger  *slog.Logger

	// Concurrency bounds how many recipient pipelines run at once, so one
	// sweep cannot overwhelm the gateway or the stores.
	Concurrency int

	// DryRun logs due reminders without sending or recording anything: no
	// gateway call, no notification record, no ledger increment. Due pairs
	// still count as Sent in SweepStats so operators see what a real sweep
	// would do.
	DryRun bool

	newNotificationID func() string
}

func NewService(
	trips tripstore.Store,
	users userstore.Store,
	notifs notifstore.Store,
	gateway pushgateway.Gateway,
	clk clockport.Clock,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		trips:             trips,
		users:             users,
		notifs:            notifs,
		gateway:           gateway,
		clk:               clk,
		logger:            logger,
		Concurrency:       8,
		newNotificationID: uuid.NewString,
	}
}

// SetNewNotificationIDForTest overrides record ID generation for deterministic
// tests. It should not be used in production code.
func (s *Service) SetNewNotificationIDForTest(fn func() string) {
	if fn != nil {
		s.newNotificationID = fn
	}
}

// SweepStats summarizes one sweep for logging.
type SweepStats struct {
	Trips      int
	Recipients int
	Sent       int
	Skipped    int
	Failed     int
}

type sweepCounters struct {
	sent    atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

// Sweep runs one pass over all trips. A failure processing one recipient never
// aborts the sweep; only a failed trip enumeration surfaces as an error.
// Recipient pipelines are independent and run concurrently up to Concurrency.
func (s *Service) Sweep(ctx context.Context) (SweepStats, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return SweepStats{}, fmt.Errorf("list trips: %w", err)
	}
	now := s.clk.Now()

	recipients := 0
	var c sweepCounters
	var g errgroup.Group
	g.SetLimit(s.Concurrency)

	for _, t := range trips {
		for _, userID := range t.Recipients() {
			t, userID := t, userID
			recipients++
			g.Go(func() error {
				s.processRecipient(ctx, t, userID, now, &c)
				return nil
			})
		}
	}
	_ = g.Wait()

	return SweepStats{
		Trips:      len(trips),
		Recipients: recipients,
		Sent:       int(c.sent.Load()),
		Skipped:    int(c.skipped.Load()),
		Failed:     int(c.failed.Load()),
	}, nil
}

// processRecipient runs the full pipeline for one trip/user pair: ledger gate,
// recipient resolution, eligibility, then dispatch-and-record. All failures
// are logged and absorbed here so one recipient cannot affect another.
func (s *Service) processRecipient(ctx context.Context, t domain.Trip, userID domain.UserID, now time.Time, c *sweepCounters) {
	log := s.logger.With("trip_id", t.ID, "user_id", userID)

	// Ledger gate: one lifetime reminder per trip/user pair, no matter how
	// often the eligibility window re-fires.
	if t.NotifiedCount(userID) >= 1 {
		c.skipped.Add(1)
		return
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			log.Debug("recipient has no user record, skipping")
			c.skipped.Add(1)
			return
		}
		log.Warn("load user failed", "error", err)
		c.failed.Add(1)
		return
	}
	if u.FCMToken == "" {
		log.Debug("recipient has no push token, skipping")
		c.skipped.Add(1)
		return
	}

	el := Evaluate(t.StartDate, ThresholdDays(t, u), now)
	if !el.Due {
		return
	}

	s.dispatch(ctx, t, u, el, now, log, c)
}

// dispatch performs the send-and-record transaction: push first, and only on
// confirmed success append the in-app record and increment the ledger. If a
// write after the send fails we log and move on; the missing ledger entry
// means the next tick may resend (at-least-once).
func (s *Service) dispatch(ctx context.Context, t domain.Trip, u domain.User, el Eligibility, now time.Time, log *slog.Logger, c *sweepCounters) {
	if s.DryRun {
		log.Info("reminder due, dry run, not sending", "days_until", el.DisplayDays)
		c.sent.Add(1)
		return
	}

	body := fmt.Sprintf("Your trip %s starts in %d day(s)!", t.Name, el.DisplayDays)
	messageID, err := s.gateway.Send(ctx, pushgateway.Message{
		Token: u.FCMToken,
		Title: reminderTitle,
		Body:  body,
		Data: map[string]string{
			"tripId": string(t.ID),
			"type":   string(domain.NotificationTypeTripReminder),
		},
	})
	if err != nil {
		log.Warn("reminder send failed", "error", err)
		c.failed.Add(1)
		return
	}

	rec := domain.Notification{
		ID:        s.newNotificationID(),
		UserID:    u.ID,
		TripID:    t.ID,
		Type:      domain.NotificationTypeTripReminder,
		Title:     reminderTitle,
		Body:      body,
		Read:      false,
		Notified:  true,
		CreatedAt: now,
	}
	if err := s.notifs.Append(ctx, rec); err != nil {
		log.Warn("notification record append failed", "error", err)
	}
	if err := s.trips.IncrementNotified(ctx, t.ID, u.ID); err != nil {
		log.Warn("notified counter update failed", "error", err)
	}

	log.Info("reminder sent", "message_id", messageID, "days_until", el.DisplayDays)
	c.sent.Add(1)
}
