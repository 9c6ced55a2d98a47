// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns
//
// It owns the lifecycle of:
//   - configuration (process config + the per-request integration source)
//   - logger + optional New Relic service wrapper
//   - optional redis client (idempotency keys)
//   - prometheus metrics
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/triangletax/taxsite/internal/config"
	loggerPkg "github.com/triangletax/taxsite/internal/logger"
	"github.com/triangletax/taxsite/internal/metrics"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. Nothing in it is request-scoped:
// provider secrets are fetched through Integrations on every request.
type Server struct {
	// Config holds process-wide settings.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	// Integrations yields provider secrets and form settings per request.
	Integrations config.IntegrationSource

	// Redis is nil unless redis.address is configured.
	Redis *redis.Client

	// Metrics is the prometheus registry for the form endpoints.
	Metrics *metrics.Metrics

	// HTTPClient is used for every outbound provider call.
	HTTPClient *http.Client

	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// It does NOT start the HTTP server. That is done in SetupHTTPServer + Start.
// A redis connection failure does not block startup: the idempotency
// middleware falls through to normal processing when the store errors.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	s := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Integrations:  config.NewEnvIntegrationSource(),
		Metrics:       metrics.New(),
		HTTPClient:    newOutboundClient(),
	}

	if cfg.RedisEnabled() {
		s.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if loggerService.GetApplication() != nil {
			s.Redis.AddHook(nrredis.NewHook(s.Redis.Options()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.Redis.Ping(ctx).Err(); err != nil {
			logger.Error().Err(err).Msg("failed to connect to redis, idempotency keys unavailable until it recovers")
		}
	}

	return s, nil
}

// newOutboundClient returns the client used for provider calls. The New
// Relic round tripper records an external segment when the request context
// carries a transaction and is a pass-through otherwise.
//
// No client timeout is set: a hanging provider call is bounded by the
// inbound request context and the server's write timeout.
func newOutboundClient() *http.Client {
	return &http.Client{
		Transport: newrelic.NewRoundTripper(http.DefaultTransport),
	}
}

// SetupHTTPServer configures the internal net/http server.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  s.Config.Server.ReadTimeout,
		WriteTimeout: s.Config.Server.WriteTimeout,
		IdleTimeout:  s.Config.Server.IdleTimeout,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
//
// It requires SetupHTTPServer to be called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Bool("redis", s.Redis != nil).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the server and its dependencies.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	s.LoggerService.Shutdown()

	return nil
}
