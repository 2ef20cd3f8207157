package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/wanderlist-app/reminder-api/internal/app/relay"
)

// RouterOptions carries the cross-cutting pieces the router wires around the
// handlers.
type RouterOptions struct {
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter constructs the relay API HTTP router.
//
// This is intentionally a thin adapter: request decoding and validation live
// in the handler, domain decisions in the relay service.
func NewRouter(relaySvc *relay.Service, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewSlogLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	// Health endpoint for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s := &Server{Relay: relaySvc}
	r.Post("/v1/notifications/send", s.handleSend)
	return r
}
