package service

import (
	"github.com/triangletax/taxsite/internal/server"
)

// Services groups every service so router setup passes one value around.
type Services struct {
	Contact  *ContactService
	Checkout *CheckoutService
}

// NewServices builds all services on top of the application container.
func NewServices(s *server.Server) *Services {
	return &Services{
		Contact:  NewContactService(s),
		Checkout: NewCheckoutService(s),
	}
}
