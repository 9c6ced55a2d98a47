package router

import (
	"github.com/labstack/echo/v4"

	"github.com/triangletax/taxsite/internal/handler"
	"github.com/triangletax/taxsite/internal/middleware"
)

// registerFormRoutes registers the two form endpoints and their preflights.
//
// Rate limiting runs before the idempotency check so a replay still counts
// against the client's budget.
func registerFormRoutes(api *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	contact := handler.ContactEnvelope()
	api.OPTIONS("/contact", handler.Preflight)
	api.POST("/contact", h.Contact.Route(),
		m.RateLimit.Limit("contact", contact.HandleError),
		m.Idempotency.Idempotent(contact.HandleError),
	)

	checkout := handler.CheckoutEnvelope()
	api.OPTIONS("/create-checkout", handler.Preflight)
	api.POST("/create-checkout", h.Checkout.Route(),
		m.RateLimit.Limit("checkout", checkout.HandleError),
		m.Idempotency.Idempotent(checkout.HandleError),
	)
}
