package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/triangletax/taxsite/internal/errs"
	"github.com/triangletax/taxsite/internal/lib/email"
	"github.com/triangletax/taxsite/internal/middleware"
	"github.com/triangletax/taxsite/internal/server"
)

// Caller-facing contact messages.
const (
	MessageContactSent          = "Message sent successfully!"
	MessageContactNotConfigured = "Contact form not configured"
	MessageContactSendFailed    = "Failed to send message"
)

// ContactSubmission is a validated contact form submission.
type ContactSubmission struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// ContactService forwards contact submissions as notification emails.
type ContactService struct {
	server *server.Server
}

// NewContactService constructs a ContactService.
func NewContactService(s *server.Server) *ContactService {
	return &ContactService{server: s}
}

// Submit emails sub to the configured notification address.
//
// There is no retry and no deduplication: every call that gets past the
// configuration check makes one Resend request.
func (s *ContactService) Submit(ctx context.Context, sub ContactSubmission) (string, error) {
	cfg, err := s.server.Integrations.Integration()
	if err != nil {
		return "", errs.NewConfigurationError(MessageContactNotConfigured, err)
	}

	if missing := cfg.MissingContactSettings(); len(missing) > 0 {
		return "", errs.NewConfigurationError(
			MessageContactNotConfigured,
			errors.Errorf("missing settings: %s", strings.Join(missing, ", ")),
		)
	}

	client, err := email.NewClient(cfg.ResendAPIKey, s.server.Logger, email.Options{
		BaseURL:    cfg.ResendBaseURL,
		HTTPClient: s.server.HTTPClient,
	})
	if err != nil {
		return "", errs.NewConfigurationError(MessageContactNotConfigured, err)
	}

	notification := email.ContactNotification{
		BusinessName: cfg.ContactBusinessName(),
		To:           cfg.ContactEmail,
		Name:         sub.Name,
		Email:        sub.Email,
		Phone:        sub.Phone,
		Message:      sub.Message,
	}

	logger := middleware.LoggerFromContext(ctx)

	start := time.Now()
	id, err := client.SendContactNotification(ctx, notification)
	took := time.Since(start)
	s.server.Metrics.ObserveUpstream("resend", took, err)

	if err != nil {
		logger.Error().Err(err).Dur("upstream_duration", took).Msg("resend rejected contact notification")
		return "", errs.NewUpstreamError(MessageContactSendFailed, errors.Wrap(err, "resend"))
	}

	logger.Info().
		Str("email_id", id).
		Bool("has_phone", sub.Phone != "").
		Dur("upstream_duration", took).
		Msg("contact notification sent")

	return id, nil
}
