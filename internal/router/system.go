package router

import (
	"github.com/labstack/echo/v4"

	"github.com/triangletax/taxsite/internal/handler"
	"github.com/triangletax/taxsite/internal/server"
)

// registerSystemRoutes registers the endpoints that are not part of the
// forms: health, API description and prometheus metrics.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/openapi.json", h.OpenAPI.ServeOpenAPI)

	r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
}
