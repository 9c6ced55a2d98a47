package errs

import (
	"errors"
	"net/http"
)

// Caller-facing message used whenever we cannot say anything more specific.
const MessageUnexpected = "An unexpected error occurred"

func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewValidationError creates a 400 Bad Request HTTPError for caller input
// that is missing or malformed. The message is exposed as-is.
//
// fieldErrors are optional and are only used for logging.
func NewValidationError(message string, fieldErrors ...FieldError) *HTTPError {
	return &HTTPError{
		Kind:     KindValidation,
		Code:     statusCode(http.StatusBadRequest),
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: false,
		Errors:   fieldErrors,
	}
}

// NewConfigurationError creates a 500 HTTPError for missing server-side
// configuration.
//
//   - message: generic text for the client (e.g. "Contact form not configured")
//   - cause: what is actually missing; logged, never sent.
func NewConfigurationError(message string, cause error) *HTTPError {
	return &HTTPError{
		Kind:    KindConfiguration,
		Code:    statusCode(http.StatusInternalServerError),
		Message: message,
		Status:  http.StatusInternalServerError,
		cause:   cause,
	}
}

// NewUpstreamError creates a 500 HTTPError for a failed provider call.
//
// cause usually carries the provider's response body; it is logged
// server-side and must not reach the caller.
func NewUpstreamError(message string, cause error) *HTTPError {
	return &HTTPError{
		Kind:    KindUpstream,
		Code:    statusCode(http.StatusInternalServerError),
		Message: message,
		Status:  http.StatusInternalServerError,
		cause:   cause,
	}
}

// NewUnexpectedError creates a 500 HTTPError with the generic message.
// Used for body parse failures, panics and anything unclassified.
func NewUnexpectedError(cause error) *HTTPError {
	return &HTTPError{
		Kind:    KindUnexpected,
		Code:    statusCode(http.StatusInternalServerError),
		Message: MessageUnexpected,
		Status:  http.StatusInternalServerError,
		cause:   cause,
	}
}

// NewTooManyRequestsError creates a 429 HTTPError for rate-limited clients.
func NewTooManyRequestsError() *HTTPError {
	return &HTTPError{
		Kind:     KindRateLimited,
		Code:     statusCode(http.StatusTooManyRequests),
		Message:  "Too many requests",
		Status:   http.StatusTooManyRequests,
		Override: false,
	}
}

// NewConflictError creates a 409 HTTPError for a request that repeats an
// Idempotency-Key still being processed.
func NewConflictError() *HTTPError {
	return &HTTPError{
		Kind:    KindConflict,
		Code:    statusCode(http.StatusConflict),
		Message: "A request with this Idempotency-Key is already in progress",
		Status:  http.StatusConflict,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
//
// Supports an optional custom code.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(http.StatusNotFound)

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Kind:     KindRouting,
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// The message is the generic status text, not the real internal error message.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Kind:     KindUnexpected,
		Code:     statusCode(http.StatusInternalServerError),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// AsHTTPError returns err as an *HTTPError, classifying anything else
// as an UnexpectedError.
func AsHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	return NewUnexpectedError(err)
}
