package reminders_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wanderlist-app/reminder-api/internal/app/reminders"
	"github.com/wanderlist-app/reminder-api/internal/domain"
)

// syncBuffer guards a bytes.Buffer for use as a log sink shared with the
// worker goroutine.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestStartWorkerSweepsOnTick(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	f := newFixture(t, now)
	f.seedUser(t, domain.User{ID: "u1", FCMToken: "tok-u1"})
	f.seedTrip(t, domain.Trip{ID: "t1", Name: "Lisbon", StartDate: startIn(now, 5*24*time.Hour), OwnerID: "u1"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		reminders.StartWorker(ctx, f.svc, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	deadline := time.After(2 * time.Second)
	for len(f.gateway.Sent()) == 0 {
		select {
		case <-deadline:
			t.Fatal("worker never dispatched a reminder")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	// The ledger held across ticks, so repeated ticks sent exactly once.
	if got := len(f.gateway.Sent()); got != 1 {
		t.Fatalf("worker sent %d messages, want 1", got)
	}
}

func TestStartWorkerLogsQuietSweeps(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	// No trips at all: every sweep is quiet, but its counters must still show
	// up at debug level.
	f := newFixture(t, now)
	var buf syncBuffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		reminders.StartWorker(ctx, f.svc, 5*time.Millisecond, logger)
	}()

	deadline := time.After(2 * time.Second)
	for !strings.Contains(buf.String(), "sweep finished") {
		select {
		case <-deadline:
			t.Fatal("quiet sweep never logged its counters")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	if out := buf.String(); !strings.Contains(out, "sent=0") || !strings.Contains(out, "level=DEBUG") {
		t.Fatalf("log output missing quiet-sweep counters:\n%s", out)
	}
}
