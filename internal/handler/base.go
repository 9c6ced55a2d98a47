package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/triangletax/taxsite/internal/errs"
	"github.com/triangletax/taxsite/internal/metrics"
	"github.com/triangletax/taxsite/internal/middleware"
	"github.com/triangletax/taxsite/internal/server"
	"github.com/triangletax/taxsite/internal/validation"
)

// Handler is the base handler type that holds shared application dependencies.
//
// It is embedded by concrete handlers so they can reach config, logger,
// metrics and the integration source through *server.Server.
type Handler struct {
	server *server.Server
}

// NewHandler constructs a base Handler.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// --- Generic typed handler plumbing -----------------------------------------

// HandlerFunc is a typed endpoint function that receives a validated
// request payload and returns the success body or an error.
//
// Req is a pointer type, e.g. *ContactRequest, so the decoder can
// populate it.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// GuardFunc runs before the body is read. A non-nil error ends the
// request without decoding.
type GuardFunc func(c echo.Context) error

// ResponseHandler defines how an endpoint answers: the success body, the
// error envelope and the observability attributes for that response type.
type ResponseHandler interface {
	// Handle writes the HTTP response for the given result.
	Handle(c echo.Context, result interface{}) error

	// HandleError writes err in the endpoint's error envelope.
	HandleError(c echo.Context, err *errs.HTTPError) error

	// GetOperation names the endpoint in logs and metrics.
	GetOperation() string

	// AddAttributes attaches New Relic attributes based on the result.
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// EnvelopeResponseHandler writes JSON bodies: result as-is on success, and
// errorBody(err) with err.Status on failure.
type EnvelopeResponseHandler struct {
	operation string
	status    int
	errorBody func(err *errs.HTTPError) interface{}
}

func (h EnvelopeResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h EnvelopeResponseHandler) HandleError(c echo.Context, err *errs.HTTPError) error {
	return c.JSON(err.Status, h.errorBody(err))
}

func (h EnvelopeResponseHandler) GetOperation() string {
	return h.operation
}

func (h EnvelopeResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn == nil {
		return
	}

	txn.AddAttribute("form", h.operation)
	if res, ok := result.(CheckoutResponse); ok {
		txn.AddAttribute("checkout.session_id", res.SessionID)
	}
}

// handleRequest is the shared execution pipeline for the form endpoints:
//
//  1. guard (optional)
//  2. decode the JSON body into a fresh Req
//  3. Req.Validate()
//  4. the typed handler
//  5. the response handler
//
// Every failure, including a panic, becomes an *errs.HTTPError and is
// written in the endpoint's envelope. The returned error is only ever a
// write failure.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	m *metrics.Metrics,
	newReq func() Req,
	guard GuardFunc,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) (err error) {
	start := time.Now()
	operation := responseHandler.GetOperation()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", c.Path())
		responseHandler.AddAttributes(txn, nil)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", operation).
		Logger()

	fail := func(phase string, cause error) error {
		httpErr := errs.AsHTTPError(cause)

		var e *zerolog.Event
		if httpErr.Status < http.StatusInternalServerError {
			e = logger.Warn()
		} else {
			e = logger.Error().Stack()
		}

		e.Err(httpErr.Cause()).
			Str("phase", phase).
			Str("kind", string(httpErr.Kind)).
			Int("status", httpErr.Status).
			Str("response_message", httpErr.Message).
			Interface("field_errors", httpErr.Errors).
			Dur("total_duration", time.Since(start)).
			Msg("request failed")

		if txn != nil {
			noticed := httpErr.Cause()
			if noticed == nil {
				noticed = httpErr
			}
			txn.NoticeError(nrpkgerrors.Wrap(noticed))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("error.kind", string(httpErr.Kind))
			txn.AddAttribute("total.duration_ms", time.Since(start).Milliseconds())
		}

		m.ObserveSubmission(operation, string(httpErr.Kind))

		return responseHandler.HandleError(c, httpErr)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fail("panic", errs.NewUnexpectedError(errors.Errorf("panic: %v", r)))
		}
	}()

	logger.Debug().Msg("handling request")

	if guard != nil {
		if err := guard(c); err != nil {
			return fail("guard", err)
		}
	}

	// ---------------- Validation phase ---------------------------------------
	validationStart := time.Now()

	req := newReq()
	if err := validation.BindAndValidate(c, req); err != nil {
		if txn != nil {
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", time.Since(validationStart).Milliseconds())
		}
		return fail("validation", err)
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	// ---------------- Handler execution phase --------------------------------
	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		return fail("handler", err)
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	m.ObserveSubmission(operation, metrics.OutcomeSuccess)

	logger.Info().
		Dur("validation_duration", validationDuration).
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed handler with the form pipeline. newReq must return
// a fresh payload on every call.
//
// Usage:
//
//	router.POST("/contact", handler.Handle(h.Handler, h.Submit, ContactEnvelope(), NewContactRequest, nil))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	responseHandler ResponseHandler,
	newReq func() Req,
	guard GuardFunc,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, h.server.Metrics, newReq, guard, func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, responseHandler)
	}
}
