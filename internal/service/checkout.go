package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"

	"github.com/triangletax/taxsite/internal/config"
	"github.com/triangletax/taxsite/internal/errs"
	"github.com/triangletax/taxsite/internal/lib/payment"
	"github.com/triangletax/taxsite/internal/middleware"
	"github.com/triangletax/taxsite/internal/server"
)

// Caller-facing checkout messages.
const (
	MessageCheckoutNotConfigured = "Payment system not configured"
	MessageCheckoutFailed        = "Failed to create checkout session"
)

// MinimumAmount is the smallest accepted amount in minor units ($0.50).
const MinimumAmount = 50

// CheckoutRequest is a validated checkout request.
type CheckoutRequest struct {
	// AmountMinor is the amount in cents.
	AmountMinor   int64
	Description   string
	CustomerEmail string

	// Origin is scheme://host of the inbound request, used for default
	// redirect URLs.
	Origin string
}

// CheckoutService creates hosted checkout sessions.
type CheckoutService struct {
	server *server.Server
}

// NewCheckoutService constructs a CheckoutService.
func NewCheckoutService(s *server.Server) *CheckoutService {
	return &CheckoutService{server: s}
}

// Integration reads the settings for this request and makes sure the
// Stripe secret is present. Checkout calls it before looking at the body.
func (s *CheckoutService) Integration() (*config.IntegrationConfig, error) {
	cfg, err := s.server.Integrations.Integration()
	if err != nil {
		return nil, errs.NewConfigurationError(MessageCheckoutNotConfigured, err)
	}

	if missing := cfg.MissingCheckoutSettings(); len(missing) > 0 {
		return nil, errs.NewConfigurationError(
			MessageCheckoutNotConfigured,
			errors.Errorf("missing settings: %v", missing),
		)
	}

	return cfg, nil
}

// RedirectURLs returns the success and cancel URLs: the configured
// overrides, or pages on the caller's own origin.
func RedirectURLs(cfg *config.IntegrationConfig, origin string) (success, cancel string) {
	success = cfg.StripeSuccessURL
	if success == "" {
		success = origin + "/thank-you?payment=success"
	}

	cancel = cfg.StripeCancelURL
	if cancel == "" {
		cancel = origin + "?payment=cancelled"
	}

	return success, cancel
}

// ProductName is the line item name: the description, or a generic
// service name for the business.
func ProductName(cfg *config.IntegrationConfig, description string) string {
	if description != "" {
		return description
	}
	return "Service from " + cfg.CheckoutBusinessName()
}

// CreateSession creates a USD Checkout Session for req.
//
// customerEmail is passed through unvalidated; Stripe rejects malformed
// addresses itself.
func (s *CheckoutService) CreateSession(ctx context.Context, cfg *config.IntegrationConfig, req CheckoutRequest) (*payment.CheckoutSession, error) {
	successURL, cancelURL := RedirectURLs(cfg, req.Origin)

	client := payment.NewClient(cfg.StripeSecretKey, s.server.Logger, payment.Options{
		BaseURL:    cfg.StripeBaseURL,
		HTTPClient: s.server.HTTPClient,
	})

	start := time.Now()
	session, err := client.CreateCheckoutSession(ctx, payment.CheckoutParams{
		AmountMinor:   req.AmountMinor,
		Currency:      string(stripe.CurrencyUSD),
		ProductName:   ProductName(cfg, req.Description),
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
		CustomerEmail: req.CustomerEmail,
	})
	took := time.Since(start)
	s.server.Metrics.ObserveUpstream("stripe", took, err)

	logger := middleware.LoggerFromContext(ctx)

	if err != nil {
		logger.Error().Err(err).Dur("upstream_duration", took).Msg("stripe rejected checkout session")
		return nil, errs.NewUpstreamError(MessageCheckoutFailed, errors.Wrap(err, "stripe"))
	}

	logger.Info().
		Str("session_id", session.ID).
		Int64("amount", req.AmountMinor).
		Bool("default_redirects", cfg.StripeSuccessURL == "" || cfg.StripeCancelURL == "").
		Dur("upstream_duration", took).
		Msg("checkout session created")

	return session, nil
}
