// Package server exposes the query surface as a read-only JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/regpulse/regpulse/core"
	"github.com/regpulse/regpulse/internal/telemetry"
	"github.com/rs/zerolog"
)

// DefaultShutdownTimeout bounds how long in-flight requests may run after shutdown starts.
const DefaultShutdownTimeout = 10 * time.Second

// Refresher starts a background sync. It fails with feed.ErrInFlight while a sync
// is running and feed.ErrClosed once the controller has shut down.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// WebAPI is the HTTP server.
type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

// Dependencies are the collaborators the handlers read from.
type Dependencies struct {
	Engine    *core.Engine
	Refresher Refresher
	Metrics   *telemetry.Metrics // nil disables /metrics and request metrics
}

// Config holds the server settings.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// NewWebAPI builds the router and server.
func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	h := NewHandler(config.Dependencies.Engine, config.Dependencies.Refresher)

	router := chi.NewRouter()
	router.Use(Logger(&logger))
	router.Use(middleware.Recoverer)
	if m := config.Dependencies.Metrics; m != nil {
		router.Use(Metrics(m))
		router.Method(http.MethodGet, "/metrics", m.Handler())
	}

	router.Get("/healthz", h.Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.GetStatus)
		r.Get("/events", h.ListEvents)
		r.Get("/summary", h.GetSummary)
		r.Get("/aggregates/{kind}", h.GetAggregates)
		r.Get("/goals", h.GetGoals)
		r.Get("/ranking", h.GetRanking)
		r.Get("/insights", h.GetInsights)
		r.Get("/check", h.GetCheck)
		r.Post("/refresh", h.Refresh)
	})

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
	}
}

// Handler returns the root handler, mainly for tests.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until ctx is done, then shuts down gracefully.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		if err := w.server.Shutdown(shutdownCtx); err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			return w.server.Close()
		}
	}
	return nil
}
