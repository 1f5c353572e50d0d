// Package webhook runs the HTTP server hosting the platform webhook
// endpoints.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Handlers holds the platform endpoints to mount. Nil entries are not
// registered, so a deployment can run any subset of platforms.
type Handlers struct {
	Telegram  http.Handler
	Line      http.Handler
	Messenger http.Handler
}

type Server struct {
	port     int
	handlers Handlers
	logger   *zerolog.Logger
}

func NewServer(port int, handlers Handlers, logger *zerolog.Logger) *Server {
	return &Server{
		port:     port,
		handlers: handlers,
		logger:   logger,
	}
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if s.handlers.Telegram != nil {
		r.Post("/telegram_webhook", s.handlers.Telegram.ServeHTTP)
	}

	if s.handlers.Line != nil {
		r.Post("/line_webhook", s.handlers.Line.ServeHTTP)
	}

	if s.handlers.Messenger != nil {
		r.Get("/messenger_webhook", s.handlers.Messenger.ServeHTTP)
		r.Post("/messenger_webhook", s.handlers.Messenger.ServeHTTP)
	}

	return r
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("Webhook server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webhook server error: %w", err)
	}

	return nil
}
