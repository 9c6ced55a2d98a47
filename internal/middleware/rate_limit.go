package middleware

import (
	"math"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/triangletax/taxsite/internal/errs"
	"github.com/triangletax/taxsite/internal/server"
)

// rateLimitExpiry is how long an idle client's limiter is kept.
const rateLimitExpiry = 3 * time.Minute

// ErrorWriter writes err in the envelope of the endpoint being limited.
type ErrorWriter func(c echo.Context, err *errs.HTTPError) error

// RateLimitMiddleware enforces server.rate_limit per client IP and
// records each rejection as a New Relic RateLimitHit event.
type RateLimitMiddleware struct {
	server *server.Server
	store  middleware.RateLimiterStore
}

// NewRateLimitMiddleware builds one in-memory store shared by every route
// it guards. With a zero rate the store is nil and Limit is a no-op.
func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	r := &RateLimitMiddleware{server: s}

	if limit := s.Config.Server.RateLimit; limit > 0 {
		r.store = middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     int(math.Max(1, math.Ceil(limit))),
			ExpiresIn: rateLimitExpiry,
		})
	}

	return r
}

// Enabled reports whether a rate is configured.
func (r *RateLimitMiddleware) Enabled() bool {
	return r.store != nil
}

// Limit returns the limiter for endpoint. Rejected requests get a 429
// written by writeErr.
func (r *RateLimitMiddleware) Limit(endpoint string, writeErr ErrorWriter) echo.MiddlewareFunc {
	if !r.Enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: r.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(endpoint)

			GetLogger(c).Warn().
				Str("endpoint", endpoint).
				Str("identifier", identifier).
				Msg("rate limit exceeded")

			return writeErr(c, errs.NewTooManyRequestsError())
		},
	})
}

// RecordRateLimitHit sends a RateLimitHit custom event when New Relic is on.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}
