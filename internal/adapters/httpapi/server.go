package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wanderlist-app/reminder-api/internal/app/relay"
)

// Server holds the handlers' dependencies.
type Server struct {
	Relay *relay.Service
}

// sendRequestBody mirrors the payload the mobile client posts:
// a delivery token, a title/body notification, and an optional data map for
// client-side deep-linking.
type sendRequestBody struct {
	Token        string            `json:"token"`
	Notification *struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
	Data map[string]string `json:"data"`
}

type sendResponseBody struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var body sendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body", nil)
		return
	}

	in := relay.SendInput{Token: body.Token, Data: body.Data}
	if body.Notification != nil {
		in.Title = body.Notification.Title
		in.Body = body.Notification.Body
	}

	res, err := s.Relay.Send(r.Context(), in)
	if err != nil {
		var ae *relay.Error
		if errors.As(err, &ae) {
			writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(sendResponseBody{Success: true, MessageID: res.MessageID})
}
