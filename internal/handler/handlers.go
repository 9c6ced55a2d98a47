package handler

import (
	"github.com/triangletax/taxsite/internal/server"
	"github.com/triangletax/taxsite/internal/service"
)

// Handlers groups all HTTP handlers so router setup receives one value.
type Handlers struct {
	Contact  *ContactHandler
	Checkout *CheckoutHandler
	Health   *HealthHandler  // Health serves /status.
	OpenAPI  *OpenAPIHandler // OpenAPI serves the API description.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Contact:  NewContactHandler(s, services.Contact),
		Checkout: NewCheckoutHandler(s, services.Checkout),
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
	}
}
