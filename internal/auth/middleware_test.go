package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rsharma/storeapi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserFetcher struct {
	user *models.User
	err  error
}

func (s *stubUserFetcher) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func newTestTM() *TokenManager {
	return NewTokenManager("test-secret-key-16ch", 15*time.Minute, 7*24*time.Hour, time.Hour)
}

func okHandler(captured **AuthContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = FromRequest(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	var captured *AuthContext
	handler := Authenticate(newTestTM(), &stubUserFetcher{})(okHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	var captured *AuthContext
	handler := Authenticate(newTestTM(), &stubUserFetcher{})(okHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile/", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	tm := newTestTM()
	user := &models.User{ID: 7, Email: "a@x.com", IsAdmin: true, IsActive: true}

	pair, err := tm.GenerateTokenPair(user)
	require.NoError(t, err)

	var captured *AuthContext
	handler := Authenticate(tm, &stubUserFetcher{user: user})(okHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, int64(7), captured.UserID)
	assert.True(t, captured.IsAdmin)
	assert.True(t, captured.IsAuthenticated)
}

func TestAuthenticate_RefreshTokenRejected(t *testing.T) {
	tm := newTestTM()
	user := &models.User{ID: 7, Email: "a@x.com", IsActive: true}

	pair, err := tm.GenerateTokenPair(user)
	require.NoError(t, err)

	var captured *AuthContext
	handler := Authenticate(tm, &stubUserFetcher{user: user})(okHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Refresh)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_InactiveUser(t *testing.T) {
	tm := newTestTM()
	user := &models.User{ID: 7, Email: "a@x.com", IsActive: false}

	pair, err := tm.GenerateTokenPair(user)
	require.NoError(t, err)

	var captured *AuthContext
	handler := Authenticate(tm, &stubUserFetcher{user: user})(okHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_UserDeleted(t *testing.T) {
	tm := newTestTM()
	user := &models.User{ID: 7, Email: "a@x.com", IsActive: true}

	pair, err := tm.GenerateTokenPair(user)
	require.NoError(t, err)

	var captured *AuthContext
	handler := Authenticate(tm, &stubUserFetcher{err: models.ErrNotFound})(okHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_Forbidden(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/products/", nil)
	req = req.WithContext(WithAuthContext(req.Context(), &AuthContext{
		UserID:          7,
		IsAdmin:         false,
		IsAuthenticated: true,
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin_Allowed(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/products/", nil)
	req = req.WithContext(WithAuthContext(req.Context(), &AuthContext{
		UserID:          7,
		IsAdmin:         true,
		IsAuthenticated: true,
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_NoAuthContext(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/products/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
