package middleware

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFromContextCarriesRequestFields(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer()
	logger := zerolog.New(&buf)
	s.Logger = &logger

	e := echo.New()
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())
	e.POST("/api/contact", func(c echo.Context) error {
		LoggerFromContext(c.Request().Context()).Info().Msg("from service")
		return c.NoContent(http.StatusOK)
	})

	rec := serve(e, http.MethodPost, "/api/contact", `{}`, map[string]string{RequestIDHeader: "req-123"})
	require.Equal(t, http.StatusOK, rec.Code)

	out := buf.String()
	assert.Contains(t, out, `"message":"from service"`)
	assert.Contains(t, out, `"request_id":"req-123"`)
	assert.Contains(t, out, `"path":"/api/contact"`)
	assert.Contains(t, out, `"method":"POST"`)
}

func TestLoggerFromContextWithoutEnhancerIsNop(t *testing.T) {
	l := LoggerFromContext(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}
