package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/triangletax/taxsite/internal/config"
	"github.com/triangletax/taxsite/internal/errs"
	"github.com/triangletax/taxsite/internal/middleware"
	"github.com/triangletax/taxsite/internal/server"
	"github.com/triangletax/taxsite/internal/service"
	"github.com/triangletax/taxsite/internal/validation"
)

const MessageInvalidAmount = "Invalid amount"

const checkoutIntegrationKey = "checkout_integration"

// CheckoutRequest is the checkout body. Amount is in cents.
//
// CustomerEmail is not validated; it is forwarded to Stripe as given.
type CheckoutRequest struct {
	Amount        float64 `json:"amount" validate:"required,min=50,minorunits"`
	Description   string  `json:"description"`
	CustomerEmail string  `json:"customerEmail"`
}

// NewCheckoutRequest returns an empty CheckoutRequest for the decoder.
func NewCheckoutRequest() *CheckoutRequest {
	return &CheckoutRequest{}
}

func (r *CheckoutRequest) Validate() error {
	if violations := validation.Check(r); violations != nil {
		return errs.NewValidationError(MessageInvalidAmount, violations.FieldErrors()...)
	}
	return nil
}

// CheckoutResponse is the checkout success body.
type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// ErrorResponse is the checkout failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CheckoutEnvelope answers {url, sessionId} or {error}.
func CheckoutEnvelope() EnvelopeResponseHandler {
	return EnvelopeResponseHandler{
		operation: "checkout",
		status:    http.StatusOK,
		errorBody: func(err *errs.HTTPError) interface{} {
			return ErrorResponse{Error: err.Message}
		},
	}
}

type CheckoutHandler struct {
	Handler
	checkout *service.CheckoutService
}

func NewCheckoutHandler(s *server.Server, checkout *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		Handler:  NewHandler(s),
		checkout: checkout,
	}
}

// RequireIntegration loads the Stripe settings before the body is read,
// so an unconfigured server answers 500 whatever the caller sent.
func (h *CheckoutHandler) RequireIntegration(c echo.Context) error {
	cfg, err := h.checkout.Integration()
	if err != nil {
		return err
	}

	c.Set(checkoutIntegrationKey, cfg)
	return nil
}

// Create opens a Stripe Checkout Session and returns its redirect URL.
func (h *CheckoutHandler) Create(c echo.Context, req *CheckoutRequest) (CheckoutResponse, error) {
	cfg, ok := c.Get(checkoutIntegrationKey).(*config.IntegrationConfig)
	if !ok {
		return CheckoutResponse{}, errs.NewUnexpectedError(errors.New("checkout integration not loaded"))
	}

	session, err := h.checkout.CreateSession(c.Request().Context(), cfg, service.CheckoutRequest{
		AmountMinor:   int64(req.Amount),
		Description:   req.Description,
		CustomerEmail: req.CustomerEmail,
		Origin:        requestOrigin(c),
	})
	if err != nil {
		return CheckoutResponse{}, err
	}

	middleware.GetLogger(c).Info().
		Str("session_id", session.ID).
		Int64("amount", int64(req.Amount)).
		Msg("checkout session created")

	return CheckoutResponse{URL: session.URL, SessionID: session.ID}, nil
}

// Route returns the POST /create-checkout handler.
func (h *CheckoutHandler) Route() echo.HandlerFunc {
	return Handle(h.Handler, h.Create, CheckoutEnvelope(), NewCheckoutRequest, h.RequireIntegration)
}

// requestOrigin is scheme://host of the inbound request.
func requestOrigin(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
