package handlers

import (
	"net/http"

	"github.com/rsharma/storeapi/internal/models"
	pkghttp "github.com/rsharma/storeapi/pkg/http"
)

// Shared failure responses so every handler renders the same wording.

func writeInvalidBody(w http.ResponseWriter) {
	pkghttp.WriteFailure(w, http.StatusBadRequest, "Invalid request body", nil)
}

func writeUnauthenticated(w http.ResponseWriter) {
	pkghttp.WriteFailure(w, http.StatusUnauthorized, "Authentication credentials were not provided.", nil)
}

func writeInvalidTokenError(w http.ResponseWriter) {
	pkghttp.WriteFailure(w, http.StatusUnauthorized, "Invalid or expired token.", models.FieldErrors{
		models.NonFieldErrors: {"Invalid or expired token."},
	})
}

func writeInternalError(w http.ResponseWriter) {
	pkghttp.WriteFailure(w, http.StatusInternalServerError, "Internal server error", nil)
}
