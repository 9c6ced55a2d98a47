package config

import (
	"fmt"

	"github.com/knadh/koanf/v2"
)

const (
	defaultContactBusinessName  = "Your Business"
	defaultCheckoutBusinessName = "Business"
)

// IntegrationConfig holds provider secrets and per-form settings.
//
// Secrets have no defaults: an empty value disables the endpoint that
// needs it. The *BaseURL fields only redirect provider calls (sandboxes,
// tests) and are normally left empty.
type IntegrationConfig struct {
	ResendAPIKey  string `koanf:"resend_api_key"`
	ResendBaseURL string `koanf:"resend_base_url" validate:"omitempty,url"`

	// ContactEmail receives contact form notifications.
	ContactEmail string `koanf:"contact_email"`

	// BusinessName labels the notification sender and the default product name.
	BusinessName string `koanf:"business_name"`

	StripeSecretKey  string `koanf:"stripe_secret_key"`
	StripeBaseURL    string `koanf:"stripe_base_url" validate:"omitempty,url"`
	StripeSuccessURL string `koanf:"stripe_success_url"`
	StripeCancelURL  string `koanf:"stripe_cancel_url"`
}

// ContactBusinessName is the business name used by the contact form.
func (c *IntegrationConfig) ContactBusinessName() string {
	if c.BusinessName == "" {
		return defaultContactBusinessName
	}
	return c.BusinessName
}

// CheckoutBusinessName is the business name used by checkout.
func (c *IntegrationConfig) CheckoutBusinessName() string {
	if c.BusinessName == "" {
		return defaultCheckoutBusinessName
	}
	return c.BusinessName
}

// MissingContactSettings lists the contact form settings that are not set.
func (c *IntegrationConfig) MissingContactSettings() []string {
	var missing []string
	if c.ResendAPIKey == "" {
		missing = append(missing, "integration.resend_api_key")
	}
	if c.ContactEmail == "" {
		missing = append(missing, "integration.contact_email")
	}
	return missing
}

// MissingCheckoutSettings lists the checkout settings that are not set.
func (c *IntegrationConfig) MissingCheckoutSettings() []string {
	if c.StripeSecretKey == "" {
		return []string{"integration.stripe_secret_key"}
	}
	return nil
}

// IntegrationSource provides the integration settings for one invocation.
type IntegrationSource interface {
	Integration() (*IntegrationConfig, error)
}

// EnvIntegrationSource reads IntegrationConfig from the environment on
// every call. Nothing is cached.
type EnvIntegrationSource struct{}

// NewEnvIntegrationSource returns the environment backed source.
func NewEnvIntegrationSource() *EnvIntegrationSource {
	return &EnvIntegrationSource{}
}

// Integration loads the `integration.*` keys from the environment.
func (EnvIntegrationSource) Integration() (*IntegrationConfig, error) {
	k := koanf.New(".")

	if err := k.Load(envProvider(), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	cfg := &IntegrationConfig{}
	if err := k.Unmarshal("integration", cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal integration config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("integration config validation failed: %w", err)
	}

	return cfg, nil
}

// StaticIntegrationSource always returns the same settings.
// Used by tests and by callers that resolve settings once.
type StaticIntegrationSource struct {
	Config IntegrationConfig
}

// Integration returns a copy of the static settings.
func (s StaticIntegrationSource) Integration() (*IntegrationConfig, error) {
	cfg := s.Config
	return &cfg, nil
}
