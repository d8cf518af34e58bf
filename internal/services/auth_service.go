package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rsharma/storeapi/internal/auth"
	"github.com/rsharma/storeapi/internal/models"
	pkgauth "github.com/rsharma/storeapi/pkg/auth"
)

// UserRepository defines the credential store operations the auth flow needs
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetOrCreateByEmail(ctx context.Context, email, name string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// TokenBlacklist defines the refresh token revocation operations
type TokenBlacklist interface {
	Blacklist(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

const emailSendTimeout = 10 * time.Second

// AuthService orchestrates the credential lifecycle: registration, login,
// password change and reset, logout, token refresh and OAuth sign-in.
type AuthService struct {
	users       UserRepository
	blacklist   TokenBlacklist
	tm          *auth.TokenManager
	oauth       OAuthExchanger
	email       EmailSender
	frontendURL string
	logger      *slog.Logger
}

func NewAuthService(
	users UserRepository,
	blacklist TokenBlacklist,
	tm *auth.TokenManager,
	oauth OAuthExchanger,
	email EmailSender,
	frontendURL string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		blacklist:   blacklist,
		tm:          tm,
		oauth:       oauth,
		email:       email,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// ProfileResponse mirrors the profile fields exposed to clients.
type ProfileResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	TC    bool   `json:"tc"`
}

var errPasswordMismatch = &models.ValidationError{
	Message: "password confirmation mismatch",
	Fields:  models.FieldErrors{models.NonFieldErrors: {"Password and Confirm Password doesn't match"}},
}

// Register creates a user with a hashed password and returns a fresh token pair.
func (s *AuthService) Register(ctx context.Context, email, name, password, confirmPassword string, tc bool) (*models.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if password != confirmPassword {
		return nil, errPasswordMismatch
	}

	// Precheck for a friendlier error; the unique index still backstops races.
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, duplicateEmailError()
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check if user exists", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.users.Create(ctx, &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashedPassword,
		TC:           tc,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, duplicateEmailError()
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	pair, err := s.tm.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error("failed to generate tokens", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.Int64("user_id", user.ID))
	return pair, nil
}

// Login verifies credentials and returns a fresh token pair. All failure paths
// collapse into ErrInvalidCredentials so responses never reveal which field
// was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials")
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !user.IsActive {
		s.logger.Info("login blocked: inactive account", slog.Int64("user_id", user.ID))
		return nil, models.ErrInvalidCredentials
	}

	// OAuth-only accounts have no password hash and cannot log in with one
	if user.PasswordHash == "" {
		s.logger.Info("login failed: invalid credentials")
		return nil, models.ErrInvalidCredentials
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		return nil, models.ErrInvalidCredentials
	}

	pair, err := s.tm.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error("failed to generate tokens", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	return pair, nil
}

// Profile returns the authenticated user's public fields.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthenticated
		}
		s.logger.Error("failed to get user", slog.Int64("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &ProfileResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		TC:    user.TC,
	}, nil
}

// ChangePassword rehashes and persists a new password for the current user.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, password, confirmPassword string) error {
	if password != confirmPassword {
		return &models.ValidationError{
			Message: "password confirmation mismatch",
			Fields:  models.FieldErrors{"confirm_password": {"Passwords do not match"}},
		}
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.users.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		s.logger.Error("failed to update password", slog.Int64("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password changed", slog.Int64("user_id", userID))
	return nil
}

// RequestPasswordReset issues a reset ticket and emails the link. An email
// delivery failure is logged but does not change the response, so the caller
// cannot probe the mail provider through us.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &models.ValidationError{
				Message: "You are not a registered user",
				Fields:  models.FieldErrors{models.NonFieldErrors: {"You are not a registered user"}},
			}
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return models.ErrInternalServer
	}

	token, err := s.tm.GenerateResetToken(user)
	if err != nil {
		s.logger.Error("failed to generate reset token", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	uid := encodeUID(user.ID)
	resetLink := fmt.Sprintf("%s/api/user/reset-password/%s/%s/", s.frontendURL, uid, token)

	emailCtx, cancel := context.WithTimeout(ctx, emailSendTimeout)
	defer cancel()

	if err := s.email.SendPasswordResetEmail(emailCtx, user.Email, user.Name, resetLink); err != nil {
		// Response stays a uniform success; only the log records the failure
		s.logger.Error("failed to send password reset email",
			slog.Int64("user_id", user.ID), slog.Any("error", err))
	}

	s.logger.Info("password reset requested", slog.Int64("user_id", user.ID))
	return nil
}

// ConfirmPasswordReset consumes a reset ticket and sets the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, uid, token, password, confirmPassword string) error {
	if password != confirmPassword {
		return errPasswordMismatch
	}

	userID, err := decodeUID(uid)
	if err != nil {
		return models.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrInvalidToken
		}
		s.logger.Error("failed to get user", slog.Int64("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.tm.ValidateResetToken(user, token); err != nil {
		return models.ErrInvalidToken
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		s.logger.Error("failed to update password", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset completed", slog.Int64("user_id", user.ID))
	return nil
}

// Logout blacklists the refresh token. Submitting the same token twice fails:
// the blacklist insert hits the unique JTI constraint.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tm.ParseRefreshToken(refreshToken)
	if err != nil {
		return models.ErrInvalidToken
	}

	err = s.blacklist.Blacklist(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return models.ErrInvalidToken
		}
		s.logger.Error("failed to blacklist token", slog.String("jti", claims.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user logged out", slog.Int64("user_id", claims.UserID))
	return nil
}

// Refresh mints a new access token from a refresh token that is neither
// expired, malformed nor blacklisted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tm.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", models.ErrInvalidToken
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("failed to check blacklist", slog.String("jti", claims.ID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}
	if revoked {
		s.logger.Info("refresh blocked: token blacklisted", slog.Int64("user_id", claims.UserID))
		return "", models.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrInvalidToken
		}
		s.logger.Error("failed to get user", slog.Int64("user_id", claims.UserID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if !user.IsActive {
		return "", models.ErrInvalidToken
	}

	access, err := s.tm.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	s.logger.Info("token refreshed", slog.Int64("user_id", user.ID))
	return access, nil
}

// OAuthLogin exchanges the provider code, finds or creates the user keyed by
// email, and returns a fresh token pair.
func (s *AuthService) OAuthLogin(ctx context.Context, code string) (*models.TokenPair, error) {
	profile, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if profile.Email == "" {
		return nil, models.ErrNoProviderEmail
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))

	user, err := s.users.GetOrCreateByEmail(ctx, email, profile.Name)
	if err != nil {
		s.logger.Error("failed to get or create oauth user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !user.IsActive {
		return nil, models.ErrInvalidCredentials
	}

	pair, err := s.tm.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error("failed to generate tokens", slog.Int64("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("oauth login", slog.Int64("user_id", user.ID))
	return pair, nil
}

func duplicateEmailError() *models.ValidationError {
	return models.NewValidationError("registration failed", "email", "user with this email already exists")
}

// encodeUID base64-encodes the decimal user id for use in reset URLs.
func encodeUID(id int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(id, 10)))
}

func decodeUID(uid string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, fmt.Errorf("invalid uid encoding: %w", err)
	}

	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid uid value: %w", err)
	}

	return id, nil
}
