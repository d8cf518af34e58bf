package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rsharma/storeapi/internal/database"
	"github.com/rsharma/storeapi/internal/models"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{pool: db.Pool}
}

const productColumns = `id, name, description, price, created_at, updated_at`

func scanProductRow(scanner rowScanner) (*models.Product, error) {
	var product models.Product

	err := scanner.Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &product, nil
}

func scanProductRows(rows pgx.Rows) ([]*models.Product, error) {
	defer rows.Close()

	products := make([]*models.Product, 0)

	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// List returns products in insertion order.
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return scanProductRows(rows)
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	return scanProductRow(r.pool.QueryRow(ctx, query, id))
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
		INSERT INTO products (name, description, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + productColumns

	return scanProductRow(r.pool.QueryRow(ctx, query,
		product.Name, product.Description, product.Price,
		product.CreatedAt, product.UpdatedAt,
	))
}

func (r *ProductRepository) Update(ctx context.Context, id int64, product *models.Product) (*models.Product, error) {
	product.UpdatedAt = time.Now()

	query := `
		UPDATE products SET name = $1, description = $2, price = $3, updated_at = $4
		WHERE id = $5
		RETURNING ` + productColumns

	return scanProductRow(r.pool.QueryRow(ctx, query,
		product.Name, product.Description, product.Price, product.UpdatedAt, id,
	))
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
