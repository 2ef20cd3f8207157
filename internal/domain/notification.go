package domain

import "time"

// NotificationType tags in-app notification records.
type NotificationType string

const (
	// NotificationTypeTripReminder marks records written by the reminder sweep.
	NotificationTypeTripReminder NotificationType = "trip_reminder"
)

// Notification is an in-app notification record stored per user. Records are
// append-only: this service never updates or deletes them (the app layer owns
// the read flag).
type Notification struct {
	ID     string
	UserID UserID
	TripID TripID
	Type   NotificationType

	Title string
	Body  string

	Read bool
	// Notified records that a push was delivered for this entry, as opposed
	// to an in-app-only record written by the app layer.
	Notified bool

	CreatedAt time.Time
}
