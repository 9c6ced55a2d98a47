package middleware

import (
	"github.com/triangletax/taxsite/internal/server"
)

// Middlewares groups every middleware component so router setup receives
// one value.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the
	// echo error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches the request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing installs New Relic and adds request attributes.
	Tracing *TracingMiddleware

	// RateLimit enforces server.rate_limit on the form endpoints.
	RateLimit *RateLimitMiddleware

	// Idempotency replays responses for repeated Idempotency-Key headers.
	// It is disabled when redis is not configured.
	Idempotency *IdempotencyMiddleware
}

// NewMiddlewares constructs all middleware components.
func NewMiddlewares(s *server.Server) *Middlewares {
	var store IdempotencyStore
	if s.Redis != nil {
		store = NewRedisIdempotencyStore(s.Redis)
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		RateLimit:       NewRateLimitMiddleware(s),
		Idempotency:     NewIdempotencyMiddleware(store),
	}
}
