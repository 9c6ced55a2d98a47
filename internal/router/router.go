package router

import (
	"github.com/labstack/echo/v4"

	"github.com/triangletax/taxsite/internal/handler"
	"github.com/triangletax/taxsite/internal/middleware"
	"github.com/triangletax/taxsite/internal/server"
)

// NewRouter builds the echo instance with global middleware, the form
// endpoints under /api and the system routes.
//
// Global middleware order matters: CORS first so that every response,
// including routing errors, carries the headers; request id and New Relic
// before the context enhancer, which reads both.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	m := middleware.NewMiddlewares(s)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = m.Global.GlobalErrorHandler

	e.Use(
		m.Global.CORS(),
		middleware.RequestID(),
		m.Tracing.NewRelicMiddleware(),
		m.Tracing.EnhanceTracing(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.RequestLogger(),
		m.Global.Recover(),
		m.Global.Secure(),
	)

	registerSystemRoutes(e, s, h)

	api := e.Group("/api")
	registerFormRoutes(api, h, m)

	return e
}
