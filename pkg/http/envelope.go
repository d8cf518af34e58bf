package http

import (
	"encoding/json"
	"net/http"

	"github.com/rsharma/storeapi/internal/models"
)

// SuccessEnvelope is the uniform wrapper for successful responses.
type SuccessEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorEnvelope is the uniform wrapper for failed responses.
type ErrorEnvelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Errors  map[string]interface{} `json:"errors"`
}

// WriteSuccess renders {success:true, message, data} with the given status code.
// A nil data renders as an empty object so clients never see null.
func WriteSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// WriteFailure renders {success:false, message, errors} with the given status code.
// Field errors are normalized first: single-element lists flatten to a scalar
// string so clients never branch on list-vs-scalar shapes.
func WriteFailure(w http.ResponseWriter, statusCode int, message string, errs models.FieldErrors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Success: false,
		Message: message,
		Errors:  NormalizeFieldErrors(errs),
	})
}

// NormalizeFieldErrors flattens single-element message lists to scalars.
// Multi-element lists pass through unchanged.
func NormalizeFieldErrors(errs models.FieldErrors) map[string]interface{} {
	normalized := make(map[string]interface{}, len(errs))
	for field, messages := range errs {
		if len(messages) == 1 {
			normalized[field] = messages[0]
			continue
		}
		normalized[field] = messages
	}
	return normalized
}
