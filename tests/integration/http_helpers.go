package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rsharma/storeapi/internal/auth"
	"github.com/rsharma/storeapi/internal/config"
	"github.com/rsharma/storeapi/internal/database"
	"github.com/rsharma/storeapi/internal/handlers"
	"github.com/rsharma/storeapi/internal/routes"
	"github.com/rsharma/storeapi/internal/services"
)

// SentEmail represents a captured email message
type SentEmail struct {
	To        string
	Name      string
	ResetLink string
}

// MockEmailService captures sent emails for test assertions
type MockEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

// SendPasswordResetEmail records the email
func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, email, name, resetLink string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{To: email, Name: name, ResetLink: resetLink})
	return nil
}

// GetLastEmail returns the most recent email sent
func (m *MockEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// MockOAuthService returns a canned provider profile
type MockOAuthService struct {
	Profile *services.ProviderProfile
	Err     error
}

func (m *MockOAuthService) ExchangeCode(ctx context.Context, code string) (*services.ProviderProfile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Profile, nil
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
	OAuthService *MockOAuthService
	TokenManager *auth.TokenManager
	Config       *config.Config
}

// NewTestServer initializes a complete HTTP server with real database plus
// mocked email and OAuth collaborators.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          "test-secret-32-characters-long-for-testing",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
			ResetTokenExpiry:   1 * time.Hour,
			CleanupInterval:    1 * time.Hour,
		},
		Email: config.EmailConfig{
			FromAddress: "noreply@test.local",
			FrontendURL: "http://localhost:3000",
		},
		Catalog: config.CatalogConfig{
			CacheTTL: 15 * time.Minute,
		},
		Server: config.ServerConfig{
			Port: "0",
			Env:  "test",
		},
	}

	userRepo, blacklistRepo, productRepo := InitializeRepositories(db)

	mockEmail := &MockEmailService{SentEmails: []SentEmail{}}
	mockOAuth := &MockOAuthService{}

	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
		cfg.Auth.ResetTokenExpiry,
	)

	authService := services.NewAuthService(
		userRepo,
		blacklistRepo,
		tokenManager,
		mockOAuth,
		mockEmail,
		cfg.Email.FrontendURL,
		logger,
	)
	productService := services.NewProductService(productRepo, cfg.Catalog.CacheTTL, logger)

	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, healthHandler, authHandler, productHandler, tokenManager, userRepo)

	return &TestServer{
		Server:       httptest.NewServer(r),
		DB:           db,
		EmailService: mockEmail,
		OAuthService: mockOAuth,
		TokenManager: tokenManager,
		Config:       cfg,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with access token
func (ts *TestServer) RequestWithAuth(method, path, accessToken string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + accessToken,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ExtractTokenPair extracts access/refresh tokens from the register/login
// envelope: {success, message, data: {token: {access, refresh}}}
func ExtractTokenPair(resp *http.Response) (accessToken, refreshToken string, err error) {
	var envelope struct {
		Data struct {
			Token struct {
				Access  string `json:"access"`
				Refresh string `json:"refresh"`
			} `json:"token"`
		} `json:"data"`
	}
	if err := ParseJSONResponse(resp, &envelope); err != nil {
		return "", "", err
	}
	return envelope.Data.Token.Access, envelope.Data.Token.Refresh, nil
}

// GetMessage extracts the envelope message from a response
func GetMessage(resp *http.Response) (string, error) {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := ParseJSONResponse(resp, &envelope); err != nil {
		return "", err
	}
	return envelope.Message, nil
}
