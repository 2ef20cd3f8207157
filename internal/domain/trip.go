package domain

import "time"

// DefaultNotificationDays is the reminder threshold applied when neither the
// trip nor the user specifies one.
const DefaultNotificationDays = 5

// Trip is a planned trip owned by one user and optionally shared with others.
// Trips are created and mutated by the app layer; this service only reads them
// and increments Notified entries after a confirmed reminder send.
type Trip struct {
	ID   TripID
	Name string

	// StartDate is nil until the owner picks dates. Trips without a start
	// date never trigger reminders.
	StartDate *time.Time

	OwnerID    UserID
	SharedWith []UserID

	// NotificationDays is the trip-level reminder threshold: remind this many
	// days before StartDate. nil means DefaultNotificationDays.
	NotificationDays *int

	// Notified counts reminders already sent, per recipient. A missing entry
	// means zero. Entries are non-decreasing and only ever incremented by the
	// dispatcher after a confirmed send.
	Notified map[UserID]int
}

// Recipients returns the deduplicated reminder recipient set: the owner plus
// everyone the trip is shared with. Order is owner first, then SharedWith in
// stored order.
func (t Trip) Recipients() []UserID {
	out := make([]UserID, 0, 1+len(t.SharedWith))
	seen := make(map[UserID]struct{}, 1+len(t.SharedWith))
	if t.OwnerID != "" {
		out = append(out, t.OwnerID)
		seen[t.OwnerID] = struct{}{}
	}
	for _, id := range t.SharedWith {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		out = append(out, id)
		seen[id] = struct{}{}
	}
	return out
}

// NotifiedCount returns how many reminders have been sent to userID for this
// trip. Absent entries count as zero.
func (t Trip) NotifiedCount(userID UserID) int {
	if t.Notified == nil {
		return 0
	}
	return t.Notified[userID]
}
