package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rsharma/storeapi/internal/database"
	"github.com/rsharma/storeapi/internal/models"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner supports both single-row and multi-row scans
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanUserRow handles the nullable password hash and populates a User model
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var passwordHash *string

	err := scanner.Scan(
		&user.ID, &user.Email, &user.Name, &passwordHash,
		&user.TC, &user.IsAdmin, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}

	return &user, nil
}

const userColumns = `id, email, name, password_hash, tc, is_admin, is_active, created_at, updated_at`

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (email, name, password_hash, tc, is_admin, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	var passwordHash *string
	if user.PasswordHash != "" {
		passwordHash = &user.PasswordHash
	}

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.Email, user.Name, passwordHash,
		user.TC, user.IsAdmin, user.IsActive,
		user.CreatedAt, user.UpdatedAt,
	))
}

// GetOrCreateByEmail inserts a user keyed by email or returns the existing row.
// The upsert is a single statement so concurrent first-logins from the same
// identity cannot race into duplicate accounts.
func (r *UserRepository) GetOrCreateByEmail(ctx context.Context, email, name string) (*models.User, error) {
	now := time.Now()

	// The no-op DO UPDATE makes the statement return the row in both branches.
	query := `
		INSERT INTO users (email, name, password_hash, tc, is_admin, is_active, created_at, updated_at)
		VALUES ($1, $2, NULL, TRUE, FALSE, TRUE, $3, $3)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING ` + userColumns

	user, err := scanUserRow(r.pool.QueryRow(ctx, query, email, name, now))
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
