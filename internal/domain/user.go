package domain

// User is the slice of the account record this service reads: where to deliver
// pushes and the legacy per-user reminder threshold.
type User struct {
	ID UserID

	// FCMToken is the push delivery token. Empty means the user is
	// unreachable and is skipped silently.
	FCMToken string

	// NotificationDays is the legacy per-user threshold override. The
	// trip-level value wins when both are set.
	NotificationDays *int
}
