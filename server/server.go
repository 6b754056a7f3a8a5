// Package server exposes wizard runs over HTTP. Unfinished runs live in the
// session store between requests.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/tbxark/tripwizard"
	"github.com/tbxark/tripwizard/config"
	"github.com/tbxark/tripwizard/session"
	"github.com/tbxark/tripwizard/submit"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Server struct {
	assistant  *tripwizard.Assistant
	runs       session.Store[tripwizard.Checkpoint]
	locks      *session.Locks
	trips      submit.TripStore
	logger     *zap.Logger
	limiter    *RateLimiter
	authSecret []byte
	origins    []string
	intents    *intentValidator
}

func New(
	assistant *tripwizard.Assistant,
	runs session.Store[tripwizard.Checkpoint],
	trips submit.TripStore,
	logger *zap.Logger,
	cfg config.ServerConfig,
) (*Server, error) {
	intents, err := newIntentValidator()
	if err != nil {
		return nil, err
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		assistant:  assistant,
		runs:       runs,
		locks:      session.NewLocks(),
		trips:      trips,
		logger:     logger,
		limiter:    NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		authSecret: []byte(cfg.AuthSecret),
		origins:    origins,
		intents:    intents,
	}, nil
}

func (s *Server) router() *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", s.health)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	router.GET("/api/schema/intent", s.intentSchema)

	auth := func(h httprouter.Handle) httprouter.Handle { return Authenticate(s.authSecret, h) }
	remote := func(h httprouter.Handle) httprouter.Handle { return auth(s.limiter.Limit(h)) }

	router.POST("/api/wizards", remote(s.createWizard))
	router.GET("/api/wizards/:id", auth(s.getWizard))
	router.POST("/api/wizards/:id/commands", auth(s.dispatch))
	router.POST("/api/wizards/:id/program", remote(s.generateProgram))
	router.POST("/api/wizards/:id/place", remote(s.selectPlace))
	router.POST("/api/wizards/:id/preview", remote(s.preview))
	router.POST("/api/wizards/:id/confirm", remote(s.confirm))

	router.GET("/api/places/autocomplete", remote(s.autocomplete))
	router.GET("/api/places/details/:placeID", remote(s.placeDetails))

	router.GET("/api/trips", auth(s.listTrips))
	router.GET("/api/trips/:tripID", auth(s.getTrip))
	return router
}

// Handler builds the middleware chain: logging, security headers, CORS, router.
func (s *Server) Handler() http.Handler {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.router())
	return loggingMiddleware(s.logger, securityHeaders(corsHandler))
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("server stopped cleanly")
	return nil
}
