package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrUpstream           = errors.New("upstream provider error")
	ErrNoProviderEmail    = errors.New("email not provided by identity provider")
	ErrInternalServer     = errors.New("internal server error")
)

// FieldErrors maps a field name to its validation messages.
// "non_field_errors" is used for errors not tied to a single field.
type FieldErrors map[string][]string

const NonFieldErrors = "non_field_errors"

// ValidationError carries a human-readable message plus field-level detail.
// Services return it instead of raising; handlers render it through the envelope.
type ValidationError struct {
	Message string
	Fields  FieldErrors
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a single-field validation error.
func NewValidationError(message, field, detail string) *ValidationError {
	return &ValidationError{
		Message: message,
		Fields:  FieldErrors{field: {detail}},
	}
}
