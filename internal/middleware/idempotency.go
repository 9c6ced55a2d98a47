package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/triangletax/taxsite/internal/errs"
)

const (
	// IdempotencyKeyHeader is the optional request header that makes a form
	// submission replay-safe.
	IdempotencyKeyHeader = "Idempotency-Key"

	// IdempotentReplayHeader is set on responses served from the cache.
	IdempotentReplayHeader = "Idempotent-Replayed"

	idempotencyTTL       = 24 * time.Hour
	idempotencyKeyPrefix = "taxsite:idempotency:"

	// idempotencyLockTTL bounds how long a crashed request keeps its key
	// reserved. It exceeds the default write timeout.
	idempotencyLockTTL    = 2 * time.Minute
	idempotencyLockSuffix = ":lock"
)

// CachedResponse is a stored form response.
type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Body       []byte      `json:"body"`
	Headers    http.Header `json:"headers"`
}

// IdempotencyStore persists responses by key. Get returns nil, nil on a miss.
//
// Reserve claims key for one in-flight request and reports false when
// another request already holds it. Release drops the claim.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, error)
	Set(ctx context.Context, key string, res *CachedResponse, ttl time.Duration) error
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisIdempotencyStore keeps responses in redis as JSON.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore wraps client.
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cached response")
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, errors.Wrap(err, "failed to decode cached response")
	}

	return &cached, nil
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, res *CachedResponse, ttl time.Duration) error {
	data, err := json.Marshal(res)
	if err != nil {
		return errors.Wrap(err, "failed to encode cached response")
	}

	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to reserve idempotency key")
	}
	return ok, nil
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key instead of calling the provider again.
//
// While the first request with a key is running, the key is reserved and
// a concurrent repeat gets 409. Requests without the header, or any
// request while the store is failing, are processed normally.
type IdempotencyMiddleware struct {
	store IdempotencyStore
}

// NewIdempotencyMiddleware returns a middleware backed by store. A nil
// store disables it.
func NewIdempotencyMiddleware(store IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store}
}

// Enabled reports whether a store is configured.
func (m *IdempotencyMiddleware) Enabled() bool {
	return m.store != nil
}

// Idempotent wraps a POST route. A concurrent repeat of an in-flight key is
// answered with a 409 written by writeErr.
func (m *IdempotencyMiddleware) Idempotent(writeErr ErrorWriter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(IdempotencyKeyHeader)
			if !m.Enabled() || key == "" || c.Request().Method != http.MethodPost {
				return next(c)
			}

			ctx := c.Request().Context()
			logger := GetLogger(c).With().Str("idempotency_key", key).Logger()

			// Keys are scoped per route so a contact key never replays a
			// checkout response.
			cacheKey := idempotencyKeyPrefix + c.Path() + ":" + key
			lockKey := cacheKey + idempotencyLockSuffix

			cached, err := m.store.Get(ctx, cacheKey)
			if err != nil {
				logger.Warn().Err(err).Msg("idempotency store unavailable, processing request")
				return next(c)
			}
			if cached != nil {
				return replay(c, &logger, cached)
			}

			reserved, err := m.store.Reserve(ctx, lockKey, idempotencyLockTTL)
			if err != nil {
				logger.Warn().Err(err).Msg("idempotency store unavailable, processing request")
				return next(c)
			}

			if !reserved {
				// The holder may have finished between Get and Reserve.
				if cached, err := m.store.Get(ctx, cacheKey); err == nil && cached != nil {
					return replay(c, &logger, cached)
				}

				logger.Warn().Msg("idempotency key already in progress")
				return writeErr(c, errs.NewConflictError())
			}

			defer func() {
				if err := m.store.Release(context.WithoutCancel(ctx), lockKey); err != nil {
					logger.Warn().Err(err).Msg("failed to release idempotency key")
				}
			}()

			capture := middleware.BodyDump(func(c echo.Context, _, resBody []byte) {
				status := c.Response().Status
				if status < http.StatusOK || status >= http.StatusInternalServerError {
					return
				}

				res := &CachedResponse{
					StatusCode: status,
					Body:       resBody,
					Headers:    make(http.Header),
				}
				if ct := c.Response().Header().Get(echo.HeaderContentType); ct != "" {
					res.Headers.Set(echo.HeaderContentType, ct)
				}

				if err := m.store.Set(context.WithoutCancel(ctx), cacheKey, res, idempotencyTTL); err != nil {
					logger.Warn().Err(err).Msg("failed to cache response")
				}
			})

			return capture(next)(c)
		}
	}
}

func replay(c echo.Context, logger *zerolog.Logger, cached *CachedResponse) error {
	logger.Info().Int("status", cached.StatusCode).Msg("replaying cached response")

	for k, values := range cached.Headers {
		for _, v := range values {
			c.Response().Header().Add(k, v)
		}
	}
	c.Response().Header().Set(IdempotentReplayHeader, "true")

	return c.Blob(cached.StatusCode, cached.Headers.Get(echo.HeaderContentType), cached.Body)
}
