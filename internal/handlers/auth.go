package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rsharma/storeapi/internal/auth"
	"github.com/rsharma/storeapi/internal/models"
	"github.com/rsharma/storeapi/internal/services"
	pkghttp "github.com/rsharma/storeapi/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, email, name, password, confirmPassword string, tc bool) (*models.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Profile(ctx context.Context, userID int64) (*services.ProfileResponse, error)
	ChangePassword(ctx context.Context, userID int64, password, confirmPassword string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, uid, token, password, confirmPassword string) error
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	OAuthLogin(ctx context.Context, code string) (*models.TokenPair, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"required,min=1"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required"`
	TC        bool   `json:"tc" validate:"required"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// ResetPasswordEmailRequest represents the request body for a reset link
type ResetPasswordEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordConfirmRequest represents the request body for a reset confirmation
type ResetPasswordConfirmRequest struct {
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required"`
}

// RefreshTokenRequest represents the request body for logout and token refresh
type RefreshTokenRequest struct {
	Refresh string `json:"refresh"`
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteFailure(w, http.StatusBadRequest, "Registration Failed", fields)
		return
	}

	pair, err := h.service.Register(r.Context(), req.Email, req.Name, req.Password, req.Password2, req.TC)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			pkghttp.WriteFailure(w, http.StatusBadRequest, "Registration Failed", verr.Fields)
			return
		}
		writeInternalError(w)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, "Registration Successful", map[string]interface{}{
		"token": pair,
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteFailure(w, http.StatusBadRequest, "Login Failed", fields)
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			pkghttp.WriteFailure(w, http.StatusUnauthorized, "Invalid Credentials", models.FieldErrors{
				models.NonFieldErrors: {"Email or Password is incorrect"},
			})
			return
		}
		writeInternalError(w)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Login Successful", map[string]interface{}{
		"token": pair,
	})
}

// Profile returns the authenticated user's profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromRequest(r)
	if ac == nil {
		writeUnauthenticated(w)
		return
	}

	profile, err := h.service.Profile(r.Context(), ac.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUnauthenticated) {
			writeUnauthenticated(w)
			return
		}
		writeInternalError(w)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "User profile fetched successfully", profile)
}

// ChangePassword sets a new password for the authenticated user
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromRequest(r)
	if ac == nil {
		writeUnauthenticated(w)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteFailure(w, http.StatusBadRequest, "Password change failed", fields)
		return
	}

	if err := h.service.ChangePassword(r.Context(), ac.UserID, req.Password, req.ConfirmPassword); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			pkghttp.WriteFailure(w, http.StatusBadRequest, "Password change failed", verr.Fields)
			return
		}
		writeInternalError(w)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Password changed successfully", nil)
}

// SendPasswordResetEmail issues a reset ticket and emails the link
func (h *AuthHandler) SendPasswordResetEmail(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteFailure(w, http.StatusBadRequest, "Password reset failed", fields)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			pkghttp.WriteFailure(w, http.StatusBadRequest, verr.Message, verr.Fields)
			return
		}
		writeInternalError(w)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Password reset link sent. Please check your email.", nil)
}

// ConfirmPasswordReset consumes a reset ticket from the URL and sets the new password
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	token := chi.URLParam(r, "token")

	var req ResetPasswordConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if fields := ValidateRequest(req); fields != nil {
		pkghttp.WriteFailure(w, http.StatusBadRequest, "Password reset failed", fields)
		return
	}

	if err := h.service.ConfirmPasswordReset(r.Context(), uid, token, req.Password, req.Password2); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			pkghttp.WriteFailure(w, http.StatusBadRequest, "Password reset failed", verr.Fields)
			return
		}
		if errors.Is(err, models.ErrInvalidToken) {
			pkghttp.WriteFailure(w, http.StatusUnauthorized, "Token is not Valid or Expired", models.FieldErrors{
				models.NonFieldErrors: {"Token is not Valid or Expired"},
			})
			return
		}
		writeInternalError(w)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Password reset successfully", nil)
}

// Logout blacklists the submitted refresh token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if req.Refresh == "" {
		pkghttp.WriteFailure(w, http.StatusBadRequest, "Refresh token is required", models.FieldErrors{
			"refresh": {"This field is required."},
		})
		return
	}

	if err := h.service.Logout(r.Context(), req.Refresh); err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			writeInvalidTokenError(w)
			return
		}
		writeInternalError(w)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Logout successfully", nil)
}

// Refresh mints a new access token from a refresh token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if req.Refresh == "" {
		pkghttp.WriteFailure(w, http.StatusBadRequest, "Refresh token is required", models.FieldErrors{
			"refresh": {"This field is required."},
		})
		return
	}

	access, err := h.service.Refresh(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			writeInvalidTokenError(w)
			return
		}
		writeInternalError(w)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Token refreshed successfully", map[string]interface{}{
		"access": access,
	})
}

// GoogleCallback completes the OAuth flow from the provider redirect
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		pkghttp.WriteFailure(w, http.StatusBadRequest, "Authorization code not provided", nil)
		return
	}

	pair, err := h.service.OAuthLogin(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoProviderEmail):
			pkghttp.WriteFailure(w, http.StatusBadRequest, "Email not provided by Google", nil)
		case errors.Is(err, models.ErrUpstream):
			pkghttp.WriteFailure(w, http.StatusBadRequest, "Google authentication failed", nil)
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteFailure(w, http.StatusUnauthorized, "Invalid Credentials", nil)
		default:
			pkghttp.WriteFailure(w, http.StatusInternalServerError, "An error occurred during Google login", nil)
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Google login successful", map[string]interface{}{
		"access_token":  pair.Access,
		"refresh_token": pair.Refresh,
	})
}
