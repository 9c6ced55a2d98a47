package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/triangletax/taxsite/internal/errs"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"required,contactemail"`)
// - Implement Validate() error that runs Check(req)
// - Return an *errs.HTTPError with the caller-facing message
type Validatable interface {
	Validate() error
}

// emailRegex is the address shape accepted by the contact form:
// one "@", no whitespace, at least one "." after the "@".
//
// Whitespace covers \v, every Unicode separator (\p{Z}, which includes
// U+00A0, U+2000-U+200A, U+2028, U+2029 and U+3000) and U+FEFF, not only
// the ASCII set matched by \s.
var emailRegex = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// IsValidEmail reports whether s has the local@domain.tld shape.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// validate is shared by every request type. Custom tags:
//   - contactemail: string matches emailRegex
//   - minorunits: number is a whole amount that fits in an int64
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})

	_ = v.RegisterValidation("minorunits", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			f := fl.Field().Float()
			return f == math.Trunc(f) && f < math.MaxInt64 && f > math.MinInt64
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return true
		default:
			return false
		}
	})

	return v
}

// Violations wraps the validator result for a single payload.
type Violations validator.ValidationErrors

// Check validates v against its struct tags. It returns nil when v is valid.
func Check(v any) Violations {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return Violations(validationErrors)
	}

	// InvalidValidationError: v is not a struct. Treat as a single violation
	// on the payload itself.
	return Violations{}
}

// HasTag reports whether any field failed the given tag.
func (v Violations) HasTag(tag string) bool {
	for _, fe := range v {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}

// FieldErrors converts the violations into user-friendly field errors.
func (v Violations) FieldErrors() []errs.FieldError {
	var fieldErrors []errs.FieldError

	for _, err := range v {
		field := err.Field()
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min", "gte":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max", "lte":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "email", "contactemail":
			msg = "must be a valid email address"

		case "minorunits":
			msg = "must be a whole number of minor currency units"

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return fieldErrors
}

// BindJSON decodes the request body into payload.
//
// The body is always treated as JSON regardless of Content-Type and must
// hold exactly one JSON object. Any decode failure (empty body, malformed
// JSON, a top-level null, trailing data, wrong field types) is an
// UnexpectedError: the caller gets the generic message, the decoder error
// goes to the logs.
func BindJSON(c echo.Context, payload any) error {
	if err := decodeSingleJSON(c.Request().Body, payload); err != nil {
		return errs.NewUnexpectedError(fmt.Errorf("failed to decode request body: %w", err))
	}

	return nil
}

var jsonNull = []byte("null")

func decodeSingleJSON(body io.Reader, payload any) error {
	if body == nil {
		return io.EOF
	}

	dec := json.NewDecoder(body)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return errors.New("body is null")
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected data after JSON value")
		}
		return fmt.Errorf("unexpected data after JSON value: %w", err)
	}

	return json.Unmarshal(raw, payload)
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
// 1) BindJSON(c, payload) populates the request struct from the JSON body.
// 2) payload.Validate() applies validation rules.
//
// Validate is expected to return an *errs.HTTPError; anything else is
// reported as a generic validation failure.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := BindJSON(c, payload); err != nil {
		return err
	}

	if err := payload.Validate(); err != nil {
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return errs.NewValidationError("Validation failed").WithCause(err)
	}

	return nil
}
