package handlers

import (
	"context"

	"github.com/rsharma/storeapi/internal/models"
	"github.com/rsharma/storeapi/internal/services"
)

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc             func(ctx context.Context, email, name, password, confirmPassword string, tc bool) (*models.TokenPair, error)
	LoginFunc                func(ctx context.Context, email, password string) (*models.TokenPair, error)
	ProfileFunc              func(ctx context.Context, userID int64) (*services.ProfileResponse, error)
	ChangePasswordFunc       func(ctx context.Context, userID int64, password, confirmPassword string) error
	RequestPasswordResetFunc func(ctx context.Context, email string) error
	ConfirmPasswordResetFunc func(ctx context.Context, uid, token, password, confirmPassword string) error
	LogoutFunc               func(ctx context.Context, refreshToken string) error
	RefreshFunc              func(ctx context.Context, refreshToken string) (string, error)
	OAuthLoginFunc           func(ctx context.Context, code string) (*models.TokenPair, error)
}

func (m *MockAuthService) Register(ctx context.Context, email, name, password, confirmPassword string, tc bool) (*models.TokenPair, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, name, password, confirmPassword, tc)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *MockAuthService) Profile(ctx context.Context, userID int64) (*services.ProfileResponse, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, userID)
	}
	return nil, models.ErrUnauthenticated
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID int64, password, confirmPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, password, confirmPassword)
	}
	return nil
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email)
	}
	return nil
}

func (m *MockAuthService) ConfirmPasswordReset(ctx context.Context, uid, token, password, confirmPassword string) error {
	if m.ConfirmPasswordResetFunc != nil {
		return m.ConfirmPasswordResetFunc(ctx, uid, token, password, confirmPassword)
	}
	return nil
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, refreshToken)
	}
	return nil
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return "", models.ErrInvalidToken
}

func (m *MockAuthService) OAuthLogin(ctx context.Context, code string) (*models.TokenPair, error) {
	if m.OAuthLoginFunc != nil {
		return m.OAuthLoginFunc(ctx, code)
	}
	return nil, models.ErrUpstream
}

// MockProductService implements ProductServiceInterface for testing
type MockProductService struct {
	ListFunc   func(ctx context.Context, page, pageSize int) (*services.ProductPage, error)
	GetFunc    func(ctx context.Context, id int64) (*services.ProductResponse, error)
	CreateFunc func(ctx context.Context, input services.ProductInput) (*services.ProductResponse, error)
	UpdateFunc func(ctx context.Context, id int64, input services.ProductInput, partial bool) (*services.ProductResponse, error)
	DeleteFunc func(ctx context.Context, id int64) error
}

func (m *MockProductService) List(ctx context.Context, page, pageSize int) (*services.ProductPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page, pageSize)
	}
	return &services.ProductPage{Results: []*services.ProductResponse{}}, nil
}

func (m *MockProductService) Get(ctx context.Context, id int64) (*services.ProductResponse, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProductService) Create(ctx context.Context, input services.ProductInput) (*services.ProductResponse, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockProductService) Update(ctx context.Context, id int64, input services.ProductInput, partial bool) (*services.ProductResponse, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, input, partial)
	}
	return nil, models.ErrInternalServer
}

func (m *MockProductService) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
