package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rsharma/storeapi/internal/models"
)

// TokenManager issues and validates the JWT credentials used across the API:
// short-lived access tokens, refresh tokens revocable via the blacklist, and
// time-boxed password reset tokens.
type TokenManager struct {
	secret             string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	resetTokenExpiry   time.Duration
}

func NewTokenManager(secret string, accessExpiry, refreshExpiry, resetExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:             secret,
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
		resetTokenExpiry:   resetExpiry,
	}
}

// GenerateTokenPair mints a fresh access+refresh pair for a user.
func (tm *TokenManager) GenerateTokenPair(user *models.User) (*models.TokenPair, error) {
	access, err := tm.generateToken(user, models.TokenTypeAccess, tm.accessTokenExpiry, []byte(tm.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := tm.generateToken(user, models.TokenTypeRefresh, tm.refreshTokenExpiry, []byte(tm.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &models.TokenPair{Access: access, Refresh: refresh}, nil
}

// GenerateAccessToken mints a single access token, used on refresh.
func (tm *TokenManager) GenerateAccessToken(user *models.User) (string, error) {
	access, err := tm.generateToken(user, models.TokenTypeAccess, tm.accessTokenExpiry, []byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return access, nil
}

// GenerateResetToken mints a password reset token. The signing key mixes in the
// user's current password hash, so every outstanding reset token becomes invalid
// the moment the password changes.
func (tm *TokenManager) GenerateResetToken(user *models.User) (string, error) {
	token, err := tm.generateToken(user, models.TokenTypeReset, tm.resetTokenExpiry, tm.resetSigningKey(user))
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return token, nil
}

func (tm *TokenManager) generateToken(user *models.User, tokenType string, expiry time.Duration, key []byte) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		Type:   tokenType,
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ValidateAccessToken verifies an access token and returns its claims.
func (tm *TokenManager) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	claims, err := tm.parse(tokenString, []byte(tm.secret))
	if err != nil {
		return nil, err
	}
	if claims.Type != models.TokenTypeAccess {
		return nil, models.ErrInvalidToken
	}
	return claims, nil
}

// ParseRefreshToken verifies a refresh token's signature, expiry and type.
// Blacklist membership is checked by the caller.
func (tm *TokenManager) ParseRefreshToken(tokenString string) (*models.TokenClaims, error) {
	claims, err := tm.parse(tokenString, []byte(tm.secret))
	if err != nil {
		return nil, err
	}
	if claims.Type != models.TokenTypeRefresh {
		return nil, models.ErrInvalidToken
	}
	return claims, nil
}

// ValidateResetToken verifies a reset token against the user it was issued for.
func (tm *TokenManager) ValidateResetToken(user *models.User, tokenString string) error {
	claims, err := tm.parse(tokenString, tm.resetSigningKey(user))
	if err != nil {
		return err
	}
	if claims.Type != models.TokenTypeReset || claims.UserID != user.ID {
		return models.ErrInvalidToken
	}
	return nil
}

func (tm *TokenManager) parse(tokenString string, key []byte) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, models.ErrInvalidToken
	}
	if !token.Valid {
		return nil, models.ErrInvalidToken
	}
	if claims.Type == "" {
		return nil, models.ErrInvalidToken
	}

	return claims, nil
}

func (tm *TokenManager) resetSigningKey(user *models.User) []byte {
	return []byte(tm.secret + user.PasswordHash)
}
