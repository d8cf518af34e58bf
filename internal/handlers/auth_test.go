package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rsharma/storeapi/internal/auth"
	"github.com/rsharma/storeapi/internal/models"
	"github.com/rsharma/storeapi/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authedRequest(req *http.Request, userID int64, isAdmin bool) *http.Request {
	ac := &auth.AuthContext{UserID: userID, Email: "user@example.com", IsAdmin: isAdmin, IsAuthenticated: true}
	return req.WithContext(auth.WithAuthContext(req.Context(), ac))
}

func testTokenPair() *models.TokenPair {
	return &models.TokenPair{Access: "access-token", Refresh: "refresh-token"}
}

// ===== Register =====

func TestAuthHandler_Register_Success(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		RegisterFunc: func(ctx context.Context, email, name, password, confirmPassword string, tc bool) (*models.TokenPair, error) {
			assert.Equal(t, "a@x.com", email)
			assert.True(t, tc)
			return testTokenPair(), nil
		},
	})

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(http.MethodPost, "/api/user/register/",
		`{"email":"a@x.com","name":"A","password":"password1","password2":"password1","tc":true}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Registration Successful", body["message"])

	data := body["data"].(map[string]interface{})
	token := data["token"].(map[string]interface{})
	assert.Equal(t, "access-token", token["access"])
	assert.Equal(t, "refresh-token", token["refresh"])
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	called := false
	h := NewAuthHandler(&MockAuthService{
		RegisterFunc: func(ctx context.Context, email, name, password, confirmPassword string, tc bool) (*models.TokenPair, error) {
			called = true
			return testTokenPair(), nil
		},
	})

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(http.MethodPost, "/api/user/register/", `{"email":"not-an-email"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called, "invalid requests must not reach the service")

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "tc")
}

func TestAuthHandler_Register_PasswordMismatch(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		RegisterFunc: func(ctx context.Context, email, name, password, confirmPassword string, tc bool) (*models.TokenPair, error) {
			return nil, &models.ValidationError{
				Message: "password confirmation mismatch",
				Fields:  models.FieldErrors{models.NonFieldErrors: {"Password and Confirm Password doesn't match"}},
			}
		},
	})

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(http.MethodPost, "/api/user/register/",
		`{"email":"a@x.com","name":"A","password":"password1","password2":"password2","tc":true}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Registration Failed", body["message"])

	// Single-element lists flatten to a scalar
	errs := body["errors"].(map[string]interface{})
	assert.Equal(t, "Password and Confirm Password doesn't match", errs["non_field_errors"])
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{})

	rec := httptest.NewRecorder()
	h.Register(rec, jsonRequest(http.MethodPost, "/api/user/register/", `{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ===== Login =====

func TestAuthHandler_Login_Success(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*models.TokenPair, error) {
			return testTokenPair(), nil
		},
	})

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(http.MethodPost, "/api/user/login/", `{"email":"a@x.com","password":"password1"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Login Successful", body["message"])
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*models.TokenPair, error) {
			return nil, models.ErrInvalidCredentials
		},
	})

	rec := httptest.NewRecorder()
	h.Login(rec, jsonRequest(http.MethodPost, "/api/user/login/", `{"email":"a@x.com","password":"wrong"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid Credentials", body["message"])
	errs := body["errors"].(map[string]interface{})
	assert.Equal(t, "Email or Password is incorrect", errs["non_field_errors"])
}

// ===== Profile =====

func TestAuthHandler_Profile_Success(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		ProfileFunc: func(ctx context.Context, userID int64) (*services.ProfileResponse, error) {
			assert.Equal(t, int64(7), userID)
			return &services.ProfileResponse{ID: 7, Email: "a@x.com", Name: "A", TC: true}, nil
		},
	})

	rec := httptest.NewRecorder()
	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/user/profile/", nil), 7, false)
	h.Profile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "User profile fetched successfully", body["message"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, "a@x.com", data["email"])
	assert.Equal(t, true, data["tc"])
}

func TestAuthHandler_Profile_NoAuthContext(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{})

	rec := httptest.NewRecorder()
	h.Profile(rec, httptest.NewRequest(http.MethodGet, "/api/user/profile/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ===== ChangePassword =====

func TestAuthHandler_ChangePassword_Success(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		ChangePasswordFunc: func(ctx context.Context, userID int64, password, confirmPassword string) error {
			assert.Equal(t, int64(7), userID)
			return nil
		},
	})

	rec := httptest.NewRecorder()
	req := authedRequest(jsonRequest(http.MethodPost, "/api/user/changepassword/",
		`{"password":"newpassword1","confirm_password":"newpassword1"}`), 7, false)
	h.ChangePassword(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Password changed successfully", body["message"])
}

func TestAuthHandler_ChangePassword_Mismatch(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		ChangePasswordFunc: func(ctx context.Context, userID int64, password, confirmPassword string) error {
			return &models.ValidationError{
				Message: "password confirmation mismatch",
				Fields:  models.FieldErrors{"confirm_password": {"Passwords do not match"}},
			}
		},
	})

	rec := httptest.NewRecorder()
	req := authedRequest(jsonRequest(http.MethodPost, "/api/user/changepassword/",
		`{"password":"newpassword1","confirm_password":"different1"}`), 7, false)
	h.ChangePassword(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	errs := body["errors"].(map[string]interface{})
	assert.Equal(t, "Passwords do not match", errs["confirm_password"])
}

// ===== Password reset =====

func TestAuthHandler_SendPasswordResetEmail_Success(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		RequestPasswordResetFunc: func(ctx context.Context, email string) error { return nil },
	})

	rec := httptest.NewRecorder()
	h.SendPasswordResetEmail(rec, jsonRequest(http.MethodPost, "/api/send-reset-password-email/", `{"email":"a@x.com"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Password reset link sent. Please check your email.", body["message"])
}

func TestAuthHandler_SendPasswordResetEmail_UnknownUser(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		RequestPasswordResetFunc: func(ctx context.Context, email string) error {
			return &models.ValidationError{
				Message: "You are not a registered user",
				Fields:  models.FieldErrors{models.NonFieldErrors: {"You are not a registered user"}},
			}
		},
	})

	rec := httptest.NewRecorder()
	h.SendPasswordResetEmail(rec, jsonRequest(http.MethodPost, "/api/send-reset-password-email/", `{"email":"x@x.com"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "You are not a registered user", body["message"])
}

func TestAuthHandler_ConfirmPasswordReset_Success(t *testing.T) {
	var gotUID, gotToken string
	h := NewAuthHandler(&MockAuthService{
		ConfirmPasswordResetFunc: func(ctx context.Context, uid, token, password, confirmPassword string) error {
			gotUID, gotToken = uid, token
			return nil
		},
	})

	r := chi.NewRouter()
	r.Post("/api/user/reset-password/{uid}/{token}/", h.ConfirmPasswordReset)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/user/reset-password/NQ/sometoken/",
		`{"password":"newpassword1","password2":"newpassword1"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NQ", gotUID)
	assert.Equal(t, "sometoken", gotToken)
	body := decodeBody(t, rec)
	assert.Equal(t, "Password reset successfully", body["message"])
}

func TestAuthHandler_ConfirmPasswordReset_InvalidToken(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		ConfirmPasswordResetFunc: func(ctx context.Context, uid, token, password, confirmPassword string) error {
			return models.ErrInvalidToken
		},
	})

	r := chi.NewRouter()
	r.Post("/api/user/reset-password/{uid}/{token}/", h.ConfirmPasswordReset)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/user/reset-password/NQ/tampered/",
		`{"password":"newpassword1","password2":"newpassword1"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Token is not Valid or Expired", body["message"])
}

// ===== Logout =====

func TestAuthHandler_Logout_Success(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		LogoutFunc: func(ctx context.Context, refreshToken string) error {
			assert.Equal(t, "refresh-token", refreshToken)
			return nil
		},
	})

	rec := httptest.NewRecorder()
	h.Logout(rec, jsonRequest(http.MethodPost, "/api/user/logout/", `{"refresh":"refresh-token"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Logout successfully", body["message"])
}

func TestAuthHandler_Logout_MissingToken(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{})

	rec := httptest.NewRecorder()
	h.Logout(rec, jsonRequest(http.MethodPost, "/api/user/logout/", `{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Refresh token is required", body["message"])
}

func TestAuthHandler_Logout_InvalidToken(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		LogoutFunc: func(ctx context.Context, refreshToken string) error {
			return models.ErrInvalidToken
		},
	})

	rec := httptest.NewRecorder()
	h.Logout(rec, jsonRequest(http.MethodPost, "/api/user/logout/", `{"refresh":"already-used"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid or expired token.", body["message"])
}

// ===== Refresh =====

func TestAuthHandler_Refresh_Success(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		RefreshFunc: func(ctx context.Context, refreshToken string) (string, error) {
			return "new-access", nil
		},
	})

	rec := httptest.NewRecorder()
	h.Refresh(rec, jsonRequest(http.MethodPost, "/api/user/token/refresh/", `{"refresh":"refresh-token"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "new-access", data["access"])
}

func TestAuthHandler_Refresh_Blacklisted(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		RefreshFunc: func(ctx context.Context, refreshToken string) (string, error) {
			return "", models.ErrInvalidToken
		},
	})

	rec := httptest.NewRecorder()
	h.Refresh(rec, jsonRequest(http.MethodPost, "/api/user/token/refresh/", `{"refresh":"blacklisted"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ===== Google OAuth =====

func TestAuthHandler_GoogleCallback_Success(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		OAuthLoginFunc: func(ctx context.Context, code string) (*models.TokenPair, error) {
			assert.Equal(t, "auth-code", code)
			return testTokenPair(), nil
		},
	})

	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, httptest.NewRequest(http.MethodGet, "/complete/google/?code=auth-code", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Google login successful", body["message"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "access-token", data["access_token"])
	assert.Equal(t, "refresh-token", data["refresh_token"])
}

func TestAuthHandler_GoogleCallback_MissingCode(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{})

	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, httptest.NewRequest(http.MethodGet, "/complete/google/", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Authorization code not provided", body["message"])
}

func TestAuthHandler_GoogleCallback_NoProviderEmail(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		OAuthLoginFunc: func(ctx context.Context, code string) (*models.TokenPair, error) {
			return nil, models.ErrNoProviderEmail
		},
	})

	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, httptest.NewRequest(http.MethodGet, "/complete/google/?code=auth-code", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Email not provided by Google", body["message"])
}

func TestAuthHandler_GoogleCallback_UpstreamFailure(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		OAuthLoginFunc: func(ctx context.Context, code string) (*models.TokenPair, error) {
			return nil, models.ErrUpstream
		},
	})

	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, httptest.NewRequest(http.MethodGet, "/complete/google/?code=bad-code", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_GoogleCallback_UnexpectedError(t *testing.T) {
	h := NewAuthHandler(&MockAuthService{
		OAuthLoginFunc: func(ctx context.Context, code string) (*models.TokenPair, error) {
			return nil, models.ErrInternalServer
		},
	})

	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, httptest.NewRequest(http.MethodGet, "/complete/google/?code=auth-code", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
