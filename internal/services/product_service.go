package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rsharma/storeapi/internal/models"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ProductRepository defines the catalog storage operations
type ProductRepository interface {
	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id int64, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

// ProductService serves the paginated catalog with a read-through page cache.
// Pages are cached serialized, keyed by page+size, and flushed on any write.
type ProductService struct {
	repo   ProductRepository
	cache  *gocache.Cache
	logger *slog.Logger
}

func NewProductService(repo ProductRepository, cacheTTL time.Duration, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		logger: logger,
	}
}

// ProductResponse is the product shape exposed to clients.
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductPage mirrors page-number pagination: next/previous are page numbers,
// null at the edges.
type ProductPage struct {
	Count    int64              `json:"count"`
	Next     *int               `json:"next"`
	Previous *int               `json:"previous"`
	Results  []*ProductResponse `json:"results"`
}

// ProductInput carries optional fields for create and update. Create and PUT
// require all of them; PATCH applies only those present.
type ProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

// List returns one page of products in insertion order. page_size is clamped
// to MaxPageSize, never an error.
func (s *ProductService) List(ctx context.Context, page, pageSize int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	cacheKey := fmt.Sprintf("products:page=%d:size=%d", page, pageSize)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*ProductPage), nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count products", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	offset := (page - 1) * pageSize
	products, err := s.repo.List(ctx, pageSize, offset)
	if err != nil {
		s.logger.Error("failed to list products", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	result := &ProductPage{
		Count:   count,
		Results: make([]*ProductResponse, 0, len(products)),
	}
	for _, p := range products {
		result.Results = append(result.Results, productToResponse(p))
	}

	if int64(offset+len(products)) < count {
		next := page + 1
		result.Next = &next
	}
	if page > 1 {
		previous := page - 1
		result.Previous = &previous
	}

	s.cache.SetDefault(cacheKey, result)

	return result, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*ProductResponse, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get product", slog.Int64("product_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return productToResponse(product), nil
}

func (s *ProductService) Create(ctx context.Context, input ProductInput) (*ProductResponse, error) {
	if verr := validateProductInput(input, false); verr != nil {
		return nil, verr
	}

	product, err := s.repo.Create(ctx, &models.Product{
		Name:        *input.Name,
		Description: *input.Description,
		Price:       *input.Price,
	})
	if err != nil {
		s.logger.Error("failed to create product", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.cache.Flush()

	s.logger.Info("product created", slog.Int64("product_id", product.ID))
	return productToResponse(product), nil
}

// Update applies a full (PUT) or partial (PATCH) update.
func (s *ProductService) Update(ctx context.Context, id int64, input ProductInput, partial bool) (*ProductResponse, error) {
	if verr := validateProductInput(input, partial); verr != nil {
		return nil, verr
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get product", slog.Int64("product_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}

	updated, err := s.repo.Update(ctx, id, product)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update product", slog.Int64("product_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.cache.Flush()

	s.logger.Info("product updated", slog.Int64("product_id", id))
	return productToResponse(updated), nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete product", slog.Int64("product_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.cache.Flush()

	s.logger.Info("product deleted", slog.Int64("product_id", id))
	return nil
}

// validateProductInput checks presence (unless partial) and price sign.
func validateProductInput(input ProductInput, partial bool) *models.ValidationError {
	fields := models.FieldErrors{}

	if !partial {
		if input.Name == nil {
			fields["name"] = append(fields["name"], "this field is required")
		}
		if input.Description == nil {
			fields["description"] = append(fields["description"], "this field is required")
		}
		if input.Price == nil {
			fields["price"] = append(fields["price"], "this field is required")
		}
	}

	if input.Name != nil && *input.Name == "" {
		fields["name"] = append(fields["name"], "this field may not be blank")
	}
	if input.Description != nil && *input.Description == "" {
		fields["description"] = append(fields["description"], "this field may not be blank")
	}
	if input.Price != nil && input.Price.IsNegative() {
		fields["price"] = append(fields["price"], "price must not be negative")
	}

	if len(fields) > 0 {
		return &models.ValidationError{Message: "invalid product data", Fields: fields}
	}
	return nil
}

func productToResponse(product *models.Product) *ProductResponse {
	return &ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
