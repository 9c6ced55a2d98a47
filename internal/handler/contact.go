package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triangletax/taxsite/internal/errs"
	"github.com/triangletax/taxsite/internal/middleware"
	"github.com/triangletax/taxsite/internal/server"
	"github.com/triangletax/taxsite/internal/service"
	"github.com/triangletax/taxsite/internal/validation"
)

const (
	MessageMissingFields = "Missing required fields"
	MessageInvalidEmail  = "Invalid email format"
)

// ContactRequest is the contact form body.
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,contactemail"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

// NewContactRequest returns an empty ContactRequest for the decoder.
func NewContactRequest() *ContactRequest {
	return &ContactRequest{}
}

// Validate reports missing fields before a malformed email.
func (r *ContactRequest) Validate() error {
	violations := validation.Check(r)
	if violations == nil {
		return nil
	}

	if violations.HasTag("required") {
		return errs.NewValidationError(MessageMissingFields, violations.FieldErrors()...)
	}

	return errs.NewValidationError(MessageInvalidEmail, violations.FieldErrors()...)
}

// ContactResponse is the contact envelope for both outcomes.
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ContactEnvelope answers {success:true, message} or {success:false, error}.
func ContactEnvelope() EnvelopeResponseHandler {
	return EnvelopeResponseHandler{
		operation: "contact",
		status:    http.StatusOK,
		errorBody: func(err *errs.HTTPError) interface{} {
			return ContactResponse{Success: false, Error: err.Message}
		},
	}
}

type ContactHandler struct {
	Handler
	contact *service.ContactService
}

func NewContactHandler(s *server.Server, contact *service.ContactService) *ContactHandler {
	return &ContactHandler{
		Handler: NewHandler(s),
		contact: contact,
	}
}

// Submit emails the submission to the business.
func (h *ContactHandler) Submit(c echo.Context, req *ContactRequest) (ContactResponse, error) {
	id, err := h.contact.Submit(c.Request().Context(), service.ContactSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		return ContactResponse{}, err
	}

	middleware.GetLogger(c).Info().Str("email_id", id).Msg("contact notification sent")

	return ContactResponse{Success: true, Message: service.MessageContactSent}, nil
}

// Route returns the POST /contact handler.
func (h *ContactHandler) Route() echo.HandlerFunc {
	return Handle(h.Handler, h.Submit, ContactEnvelope(), NewContactRequest, nil)
}
