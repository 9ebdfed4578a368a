package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prperemyshlev/account-service/internal/domain"
)

// tokenRepository implements AccessTokenRepository interface
type tokenRepository struct {
	db DBTX
}

// NewTokenRepository creates a new access token repository
func NewTokenRepository(db DBTX) AccessTokenRepository {
	return &tokenRepository{db: db}
}

// Create stores a new access token
func (r *tokenRepository) Create(ctx context.Context, token *domain.AccessToken) error {
	query := `
		INSERT INTO access_tokens (token, refresh_token, expires_at, account_id)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		token.Token,
		token.RefreshToken,
		token.ExpiresAt,
		token.AccountID,
	)

	if err != nil {
		if _, ok := uniqueViolationConstraint(err); ok {
			return fmt.Errorf("token already exists: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// GetByToken retrieves an access token by its exact string
func (r *tokenRepository) GetByToken(ctx context.Context, token string) (*domain.AccessToken, error) {
	query := `
		SELECT token, refresh_token, expires_at, account_id
		FROM access_tokens
		WHERE token = $1
	`

	accessToken := &domain.AccessToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&accessToken.Token,
		&accessToken.RefreshToken,
		&accessToken.ExpiresAt,
		&accessToken.AccountID,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return accessToken, nil
}
