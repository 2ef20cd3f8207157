package pushgateway

import "context"

// Message is the push payload handed to the gateway: a delivery token, a
// title/body pair, and an optional data map for client-side deep-linking.
type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Gateway delivers push messages to devices and returns the gateway-assigned
// message identifier on success.
type Gateway interface {
	Send(ctx context.Context, msg Message) (messageID string, err error)
}
