package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rsharma/storeapi/internal/config"
	"github.com/rsharma/storeapi/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"
	oauthCallTimeout  = 10 * time.Second
)

// ProviderProfile is the identity returned by the OAuth provider.
type ProviderProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OAuthExchanger swaps an authorization code for the provider's user profile.
type OAuthExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*ProviderProfile, error)
}

// GoogleOAuthService exchanges Google authorization codes and fetches the
// user's profile. Both outbound calls are bounded by oauthCallTimeout.
type GoogleOAuthService struct {
	conf   *oauth2.Config
	logger *slog.Logger
}

func NewGoogleOAuthService(cfg config.OAuthConfig, logger *slog.Logger) *GoogleOAuthService {
	return &GoogleOAuthService{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		logger: logger,
	}
}

func (s *GoogleOAuthService) ExchangeCode(ctx context.Context, code string) (*ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, oauthCallTimeout)
	defer cancel()

	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		s.logger.Info("oauth code exchange failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: code exchange failed", models.ErrUpstream)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := s.conf.Client(ctx, token).Do(req)
	if err != nil {
		s.logger.Info("oauth userinfo fetch failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: userinfo fetch failed", models.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Info("oauth userinfo returned non-2xx", slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: userinfo returned status %d", models.ErrUpstream, resp.StatusCode)
	}

	var profile ProviderProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: failed to decode userinfo response", models.ErrUpstream)
	}

	return &profile, nil
}
