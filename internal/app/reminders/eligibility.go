package reminders

import (
	"math"
	"time"

	"github.com/wanderlist-app/reminder-api/internal/domain"
)

// Eligibility is the evaluator's decision for one trip/user pair at one
// reference time.
type Eligibility struct {
	// Due reports whether a reminder should fire now.
	Due bool

	// DaysUntil is the unrounded number of days between now and the trip
	// start. Negative once the trip has started.
	DaysUntil float64

	// DisplayDays is DaysUntil rounded to the nearest whole day. Used for
	// message text only; the Due decision uses the unrounded value.
	DisplayDays int
}

// Evaluate decides whether a reminder is due for a trip starting at startDate,
// given the effective threshold in days and the current reference time.
//
// The trigger window is (thresholdDays-1, thresholdDays]: one day wide, ending
// at the threshold boundary. A minutely sweep therefore sees the condition
// true for exactly one day per trip, and the notified counter is a dedup
// guard rather than the only thing preventing repeat sends. A threshold of 0
// means "remind on the day of departure"; once DaysUntil drops to or below
// thresholdDays-1 the trip is never due again.
//
// An open-ended window (due for the whole [0, thresholdDays] range) was
// considered and rejected: it would make the notified ledger the only thing
// preventing repeats, and any ledger loss would re-send for every near-term
// trip.
//
// A nil startDate is never due.
func Evaluate(startDate *time.Time, thresholdDays int, now time.Time) Eligibility {
	if startDate == nil {
		return Eligibility{}
	}
	days := float64(startDate.Sub(now)) / float64(24*time.Hour)
	return Eligibility{
		Due:         days <= float64(thresholdDays) && days > float64(thresholdDays)-1,
		DaysUntil:   days,
		DisplayDays: int(math.Round(days)),
	}
}

// ThresholdDays resolves the effective reminder threshold for a trip/user
// pair: the trip-level value wins, then the legacy per-user override, then
// domain.DefaultNotificationDays.
func ThresholdDays(t domain.Trip, u domain.User) int {
	if t.NotificationDays != nil {
		return *t.NotificationDays
	}
	if u.NotificationDays != nil {
		return *u.NotificationDays
	}
	return domain.DefaultNotificationDays
}
