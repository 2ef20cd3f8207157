package relay

import (
	"context"
	"errors"
	"strings"

	"github.com/wanderlist-app/reminder-api/internal/ports/out/pushgateway"
)

// Service is the on-demand send path: validate the caller-supplied payload and
// forward it to the push gateway. No eligibility or dedup logic applies here.
type Service struct {
	gateway pushgateway.Gateway
}

func NewService(gateway pushgateway.Gateway) *Service {
	return &Service{gateway: gateway}
}

// SendInput is the validated request body of the on-demand send endpoint.
type SendInput struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// SendResult carries the gateway-assigned message identifier.
type SendResult struct {
	MessageID string
}

// Send validates in and performs the gateway send. Validation failures are
// reported before any gateway call is made.
func (s *Service) Send(ctx context.Context, in SendInput) (SendResult, error) {
	details := map[string]any{}
	if strings.TrimSpace(in.Token) == "" {
		details["token"] = "must be non-empty"
	}
	if strings.TrimSpace(in.Title) == "" {
		details["notification.title"] = "must be non-empty"
	}
	if strings.TrimSpace(in.Body) == "" {
		details["notification.body"] = "must be non-empty"
	}
	if len(details) > 0 {
		return SendResult{}, &Error{
			Status:  400,
			Code:    "INVALID_ARGUMENT",
			Message: "missing notification data",
			Details: details,
		}
	}

	messageID, err := s.gateway.Send(ctx, pushgateway.Message{
		Token: in.Token,
		Title: in.Title,
		Body:  in.Body,
		Data:  in.Data,
	})
	if err != nil {
		if errors.Is(err, pushgateway.ErrInvalidToken) {
			return SendResult{}, &Error{
				Status:  400,
				Code:    "INVALID_TOKEN",
				Message: "push token was rejected by the gateway",
			}
		}
		return SendResult{}, &Error{
			Status:  502,
			Code:    "GATEWAY_ERROR",
			Message: err.Error(),
		}
	}
	return SendResult{MessageID: messageID}, nil
}
