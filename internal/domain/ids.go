package domain

// TripID identifies a trip record in the trip store. Format is controlled by
// the app layer that creates trips; we treat it as opaque.
type TripID string

// UserID identifies a user record in the user store.
type UserID string
