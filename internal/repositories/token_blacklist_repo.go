package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rsharma/storeapi/internal/database"
)

// TokenBlacklistRepository persists revoked refresh token IDs. A blacklisted
// refresh token must never again mint an access token.
type TokenBlacklistRepository struct {
	pool *pgxpool.Pool
}

func NewTokenBlacklistRepository(db *database.DB) *TokenBlacklistRepository {
	return &TokenBlacklistRepository{pool: db.Pool}
}

// Blacklist records a refresh token's JTI until its natural expiry.
// The jti column is unique; re-blacklisting returns models.ErrConflict, which
// callers treat as "already invalid".
func (r *TokenBlacklistRepository) Blacklist(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	query := `
		INSERT INTO blacklisted_tokens (jti, user_id, expires_at, blacklisted_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, jti, userID, expiresAt, time.Now())
	return database.MapPostgresError(err)
}

// IsBlacklisted reports whether a refresh token JTI has been revoked.
func (r *TokenBlacklistRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM blacklisted_tokens WHERE jti = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, jti).Scan(&exists); err != nil {
		return false, database.MapPostgresError(err)
	}

	return exists, nil
}

// DeleteExpired removes blacklist rows whose tokens have expired anyway.
func (r *TokenBlacklistRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM blacklisted_tokens WHERE expires_at < $1`

	result, err := r.pool.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
