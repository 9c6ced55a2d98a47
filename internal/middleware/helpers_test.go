package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/triangletax/taxsite/internal/config"
	"github.com/triangletax/taxsite/internal/metrics"
	"github.com/triangletax/taxsite/internal/server"
)

func newTestServer(mutate ...func(*config.Config)) *server.Server {
	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:              "0",
			CORSAllowedOrigin: "*",
		},
		Observability: config.DefaultObservabilityConfig(),
	}
	for _, m := range mutate {
		m(cfg)
	}

	logger := zerolog.Nop()

	return &server.Server{
		Config:       cfg,
		Logger:       &logger,
		Integrations: config.StaticIntegrationSource{},
		Metrics:      metrics.New(),
		HTTPClient:   http.DefaultClient,
	}
}

func serve(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
