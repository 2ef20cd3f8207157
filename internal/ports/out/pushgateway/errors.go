package pushgateway

import "errors"

// ErrInvalidToken reports a delivery token the gateway rejected as invalid or
// expired, as opposed to a transport failure.
var ErrInvalidToken = errors.New("invalid push token")
