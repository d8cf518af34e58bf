package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rsharma/storeapi/internal/models"
)

// Global validator instance (reused across all handlers). Field names in
// error output come from the json tag so they match the wire format.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRequest validates a request DTO and returns field-level errors
// keyed by json field name, or nil if the request is valid.
func ValidateRequest(req interface{}) models.FieldErrors {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	fields := models.FieldErrors{}
	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range ve {
			field := fieldError.Field()
			fields[field] = append(fields[field], formatValidationError(fieldError))
		}
		return fields
	}

	fields[models.NonFieldErrors] = append(fields[models.NonFieldErrors], "invalid request")
	return fields
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "eq":
		return fmt.Sprintf("must be %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
