// Packages lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It contains shared utilities and the provider integrations:
// email delivery (Resend) and hosted checkout (Stripe).
package lib
