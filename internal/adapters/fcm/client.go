// Package fcm sends push messages through the Firebase Cloud Messaging legacy
// HTTP API. Sends pass through a token-bucket limiter so a large sweep cannot
// flood the gateway.
package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wanderlist-app/reminder-api/internal/ports/out/pushgateway"
)

// DefaultSendURL is the FCM legacy send endpoint.
const DefaultSendURL = "https://fcm.googleapis.com/fcm/send"

// Client implements pushgateway.Gateway against FCM.
type Client struct {
	httpClient *http.Client
	sendURL    string
	serverKey  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an FCM client. sendsPerMinute bounds the outbound send
// rate; sendURL falls back to DefaultSendURL when empty.
func NewClient(sendURL, serverKey string, sendsPerMinute int, logger *slog.Logger) *Client {
	if sendURL == "" {
		sendURL = DefaultSendURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(sendsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		sendURL:    sendURL,
		serverKey:  serverKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

type notificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type sendRequest struct {
	To           string              `json:"to"`
	Notification notificationPayload `json:"notification"`
	Data         map[string]string   `json:"data,omitempty"`
}

type sendResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func (c *Client) Send(ctx context.Context, msg pushgateway.Message) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(sendRequest{
		To:           msg.Token,
		Notification: notificationPayload{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
	})
	if err != nil {
		return "", fmt.Errorf("marshal fcm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create fcm request: %w", err)
	}
	req.Header.Set("Authorization", "key="+c.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fcm request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read fcm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fcm status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("decode fcm response: %w", err)
	}
	if len(sr.Results) == 0 {
		return "", fmt.Errorf("fcm response has no results")
	}
	if e := sr.Results[0].Error; e != "" {
		if isInvalidTokenError(e) {
			return "", fmt.Errorf("fcm: %s: %w", e, pushgateway.ErrInvalidToken)
		}
		return "", fmt.Errorf("fcm: %s", e)
	}
	c.logger.Debug("fcm send ok", "message_id", sr.Results[0].MessageID)
	return sr.Results[0].MessageID, nil
}

// isInvalidTokenError reports FCM result errors that mean the registration
// token itself is bad, as opposed to a transient delivery problem.
func isInvalidTokenError(code string) bool {
	switch code {
	case "MissingRegistration", "InvalidRegistration", "NotRegistered":
		return true
	}
	return false
}
