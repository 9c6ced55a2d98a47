// Package payment creates hosted checkout sessions with Stripe.
//
// Session lifecycle after creation (payment, expiry, refunds) is owned by
// Stripe; nothing about a session is stored here.
package payment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
)

// Options customize how the Stripe client reaches the API.
type Options struct {
	// BaseURL replaces https://api.stripe.com (stripe-mock, tests).
	BaseURL string

	// HTTPClient replaces the default HTTP client.
	HTTPClient *http.Client
}

// CheckoutParams describes a single-item, quantity-one payment.
type CheckoutParams struct {
	// AmountMinor is the unit amount in the smallest currency unit.
	AmountMinor int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string

	// CustomerEmail is forwarded only when non-empty.
	CustomerEmail string
}

// CheckoutSession is the part of a Stripe session the caller needs.
type CheckoutSession struct {
	ID  string
	URL string
}

// Client wraps a stripe.Client and a logger.
type Client struct {
	client *stripe.Client
	logger *zerolog.Logger
}

// NewClient creates a Client authenticated with secretKey.
//
// Automatic network retries are disabled: one call to this client is one
// request to Stripe.
func NewClient(secretKey string, logger *zerolog.Logger, opts Options) *Client {
	backendConfig := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &leveledLogger{logger: logger},
	}

	if opts.HTTPClient != nil {
		backendConfig.HTTPClient = opts.HTTPClient
	}

	if opts.BaseURL != "" {
		backendConfig.URL = stripe.String(opts.BaseURL)
	}

	api := stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig)

	return &Client{
		client: stripe.NewClient(secretKey, stripe.WithBackends(&stripe.Backends{
			API:     api,
			Connect: api,
			Uploads: api,
		})),
		logger: logger,
	}
}

// CreateCheckoutSession creates a "payment" mode Checkout Session with one
// line item.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency: stripe.String(p.Currency),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(p.ProductName),
				},
				UnitAmount: stripe.Int64(p.AmountMinor),
			},
			Quantity: stripe.Int64(1),
		}},
	}

	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}

	session, err := c.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	c.logger.Debug().
		Str("session_id", session.ID).
		Int64("amount", p.AmountMinor).
		Msg("checkout session created")

	return &CheckoutSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

// leveledLogger routes stripe-go's internal logging into zerolog.
type leveledLogger struct {
	logger *zerolog.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Str("component", "stripe").Msgf(format, v...)
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.logger.Debug().Str("component", "stripe").Msgf(format, v...)
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Str("component", "stripe").Msgf(format, v...)
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Str("component", "stripe").Msgf(format, v...)
}
