// Package email provides an email sending client.
//
// It uses Resend (resend-go) as the email provider and renders
// email bodies from embedded templates.
package email

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// SenderAddress is the fixed no-reply mailbox notifications are sent from.
const SenderAddress = "noreply@resend.dev"

// Options customize how the Resend client reaches the API.
type Options struct {
	// BaseURL replaces https://api.resend.com/ (sandboxes, tests).
	BaseURL string

	// HTTPClient replaces the default HTTP client.
	HTTPClient *http.Client
}

// Client wraps the Resend client and a logger.
type Client struct {
	// client is the provider client used to send emails via API.
	client *resend.Client

	logger *zerolog.Logger
}

// NewClient creates an email Client authenticated with apiKey.
func NewClient(apiKey string, logger *zerolog.Logger, opts Options) (*Client, error) {
	var client *resend.Client
	if opts.HTTPClient != nil {
		client = resend.NewCustomClient(opts.HTTPClient, apiKey)
	} else {
		client = resend.NewClient(apiKey)
	}

	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, errors.Wrap(err, "invalid resend base url")
		}
		client.BaseURL = base
	}

	return &Client{
		client: client,
		logger: logger,
	}, nil
}

// SendEmail delivers a prepared request through Resend and returns the
// provider's message id.
//
// Exactly one API call is made. A non-success answer is returned as an
// error carrying the provider's message.
func (c *Client) SendEmail(ctx context.Context, params *resend.SendEmailRequest) (string, error) {
	sent, err := c.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug().
		Str("email_id", sent.Id).
		Str("subject", params.Subject).
		Msg("email accepted by resend")

	return sent.Id, nil
}
