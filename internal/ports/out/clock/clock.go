package clock

import "time"

// Clock provides the sweep's reference time. An interface so tests can pin
// "now" and walk trips across the eligibility window deterministically.
type Clock interface {
	Now() time.Time
}
