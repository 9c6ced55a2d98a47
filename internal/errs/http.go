// Package errs define custom error types and utilities.
//
// Its purpose is to create specific error structures
// (e.g. a ValidationError for form input or an UpstreamError when a
// provider API refuses a request) so that every handler can answer
// with a consistent JSON envelope while keeping the real cause in the
// server logs only.
//
// - Return consistent error shapes to API clients (JSON).
// - Keep field-level validation details for logging.
// - Never leak secrets or provider responses to the caller.
// - Provide errors that play nicely with Go's standard errors package.
package errs

import "strings"

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "email", "error": "must be a valid email address" }
type FieldError struct {
	// Field is the field name/key the error relates to (e.g. "email").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// Kind classifies an HTTPError into the error taxonomy shared by the
// form handlers.
type Kind string

const (
	// KindValidation is malformed or missing caller input. Safe to expose.
	KindValidation Kind = "validation_error"

	// KindConfiguration is a missing server-side secret or setting.
	KindConfiguration Kind = "configuration_error"

	// KindUpstream is a non-success answer from a provider API.
	KindUpstream Kind = "upstream_error"

	// KindUnexpected is a parse failure or any other uncaught error.
	KindUnexpected Kind = "unexpected_error"

	// KindRateLimited is a request rejected by the rate limiter.
	KindRateLimited Kind = "rate_limited"

	// KindConflict is a repeat of an Idempotency-Key whose first request
	// has not finished.
	KindConflict Kind = "conflict"

	// KindRouting covers unknown routes and methods.
	KindRouting Kind = "routing_error"
)

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error().
// Fields:
//   - Kind: position in the error taxonomy (validation, upstream, ...).
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message, always safe to show the caller.
//   - Status: HTTP status code.
//   - Override: flag to let middleware decide whether to override the message.
//   - Errors: list of per-field errors (validation), logged server-side.
type HTTPError struct {
	Kind     Kind   `json:"-"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	// Errors holds field-level validation errors, typically for form inputs.
	Errors []FieldError `json:"errors,omitempty"`

	// cause is the internal error that produced this one. It is only
	// ever written to logs.
	cause error
}

// Error makes *HTTPError satisfy the built-in `error` interface.
// It returns the Message, the part that is safe to show a client.
func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap exposes the internal cause to errors.Is / errors.As.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Cause returns the internal error (may be nil).
func (e *HTTPError) Cause() error {
	return e.cause
}

// Is customizes how errors.Is(...) treats HTTPError.
//
// It returns true if `target` is also a *HTTPError. When target carries a
// Kind, the kinds must match as well, so errors.Is(err, &HTTPError{Kind:
// KindUpstream}) selects upstream failures only.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}

	return t.Kind == "" || t.Kind == e.Kind
}

// WithMessage returns a *copy* of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Kind:     e.Kind,
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
		cause:    e.cause,
	}
}

// WithCause returns a copy of this HTTPError carrying cause.
func (e *HTTPError) WithCause(cause error) *HTTPError {
	c := e.WithMessage(e.Message)
	c.cause = cause
	return c
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
//
// Used to create stable machine-readable error codes from HTTP status text.
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
