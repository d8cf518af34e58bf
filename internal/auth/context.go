package auth

import (
	"context"
	"net/http"
)

// contextKey is a custom type for context keys
type contextKey string

const authContextKey contextKey = "auth"

// AuthContext is the explicit per-request identity passed to handlers instead of
// ambient framework state.
type AuthContext struct {
	UserID          int64
	Email           string
	IsAdmin         bool
	IsAuthenticated bool
}

// WithAuthContext returns a child context carrying the given identity.
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// FromRequest extracts the AuthContext from a request, or nil if the request
// did not pass through the auth middleware.
func FromRequest(r *http.Request) *AuthContext {
	ac, ok := r.Context().Value(authContextKey).(*AuthContext)
	if !ok {
		return nil
	}
	return ac
}
