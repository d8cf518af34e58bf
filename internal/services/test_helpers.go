package services

import (
	"context"
	"time"

	"github.com/rsharma/storeapi/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc            func(ctx context.Context, id int64) (*models.User, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*models.User, error)
	CreateFunc             func(ctx context.Context, user *models.User) (*models.User, error)
	GetOrCreateByEmailFunc func(ctx context.Context, email, name string) (*models.User, error)
	UpdatePasswordFunc     func(ctx context.Context, id int64, passwordHash string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) GetOrCreateByEmail(ctx context.Context, email, name string) (*models.User, error) {
	if m.GetOrCreateByEmailFunc != nil {
		return m.GetOrCreateByEmailFunc(ctx, email, name)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

// MockTokenBlacklist implements TokenBlacklist for testing
type MockTokenBlacklist struct {
	BlacklistFunc     func(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsBlacklistedFunc func(ctx context.Context, jti string) (bool, error)
}

func (m *MockTokenBlacklist) Blacklist(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	if m.BlacklistFunc != nil {
		return m.BlacklistFunc(ctx, jti, userID, expiresAt)
	}
	return nil
}

func (m *MockTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	if m.IsBlacklistedFunc != nil {
		return m.IsBlacklistedFunc(ctx, jti)
	}
	return false, nil
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	SendPasswordResetEmailFunc func(ctx context.Context, email, name, resetLink string) error
}

func (m *MockEmailSender) SendPasswordResetEmail(ctx context.Context, email, name, resetLink string) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, name, resetLink)
	}
	return nil
}

// MockOAuthExchanger implements OAuthExchanger for testing
type MockOAuthExchanger struct {
	ExchangeCodeFunc func(ctx context.Context, code string) (*ProviderProfile, error)
}

func (m *MockOAuthExchanger) ExchangeCode(ctx context.Context, code string) (*ProviderProfile, error) {
	if m.ExchangeCodeFunc != nil {
		return m.ExchangeCodeFunc(ctx, code)
	}
	return nil, models.ErrUpstream
}

// MockProductRepository implements ProductRepository for testing
type MockProductRepository struct {
	ListFunc    func(ctx context.Context, limit, offset int) ([]*models.Product, error)
	CountFunc   func(ctx context.Context) (int64, error)
	GetByIDFunc func(ctx context.Context, id int64) (*models.Product, error)
	CreateFunc  func(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateFunc  func(ctx context.Context, id int64, product *models.Product) (*models.Product, error)
	DeleteFunc  func(ctx context.Context, id int64) error
}

func (m *MockProductRepository) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.Product{}, nil
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, product)
	}
	return nil, models.ErrInternalServer
}

func (m *MockProductRepository) Update(ctx context.Context, id int64, product *models.Product) (*models.Product, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, product)
	}
	return nil, models.ErrInternalServer
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// NewTestUser builds an active user with a bcrypt hash of "OldPassword1!"
// precomputed where tests need credential checks to pass.
func NewTestUser(id int64, email, name string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		TC:        true,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
