package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rsharma/storeapi/internal/models"
	pkghttp "github.com/rsharma/storeapi/pkg/http"
)

// UserFetcher loads the current user record so role and active flags reflect
// the database, not the state at token issuance.
type UserFetcher interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Authenticate validates the bearer access token and injects an AuthContext
// into the request context.
func Authenticate(tm *TokenManager, users UserFetcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthenticated(w, "Authentication credentials were not provided")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeUnauthenticated(w, "Invalid authorization header format")
				return
			}

			claims, err := tm.ValidateAccessToken(parts[1])
			if err != nil {
				writeUnauthenticated(w, "Token is invalid or expired")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					writeUnauthenticated(w, "Token is invalid or expired")
					return
				}
				pkghttp.WriteFailure(w, http.StatusInternalServerError, "An error occurred",
					models.FieldErrors{models.NonFieldErrors: {"internal server error"}})
				return
			}

			if !user.IsActive {
				writeUnauthenticated(w, "User account is disabled")
				return
			}

			ac := &AuthContext{
				UserID:          user.ID,
				Email:           user.Email,
				IsAdmin:         user.IsAdmin,
				IsAuthenticated: true,
			}
			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), ac)))
		})
	}
}

// RequireAdmin gates write access to the catalog. Must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := FromRequest(r)
		if ac == nil || !ac.IsAuthenticated {
			writeUnauthenticated(w, "Authentication credentials were not provided")
			return
		}

		if !ac.IsAdmin {
			pkghttp.WriteFailure(w, http.StatusForbidden, "Permission denied",
				models.FieldErrors{models.NonFieldErrors: {"You do not have permission to perform this action"}})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeUnauthenticated(w http.ResponseWriter, detail string) {
	pkghttp.WriteFailure(w, http.StatusUnauthorized, "Authentication failed",
		models.FieldErrors{models.NonFieldErrors: {detail}})
}
