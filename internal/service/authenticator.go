package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/account-service/internal/domain"
	"github.com/prperemyshlev/account-service/internal/repository"
	"go.uber.org/zap"
)

// authenticator implements Authenticator interface
type authenticator struct {
	store    repository.Store
	cache    TokenCache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthenticator creates a new authenticator. cache may be nil.
func NewAuthenticator(store repository.Store, cache TokenCache, cacheTTL time.Duration, logger *zap.Logger) Authenticator {
	return &authenticator{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Authenticate returns the account id of an unexpired stored token
func (a *authenticator) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: missing token", ErrUnauthorized)
	}

	if a.cache != nil {
		accountID, found, err := a.cache.Get(ctx, token)
		if err != nil {
			a.logger.Warn("Token cache lookup failed", zap.Error(err))
		} else if found {
			return accountID, nil
		}
	}

	var accessToken *domain.AccessToken
	err := a.store.WithinTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		var err error
		accessToken, err = repos.Tokens.GetByToken(ctx, token)
		return err
	})
	if err != nil {
		if err := unauthorizedIfMissing(err, "unknown token"); IsOutcome(err) {
			return "", err
		}
		return "", fmt.Errorf("failed to look up token: %w", err)
	}

	now := a.now()
	if accessToken.IsExpired(now) {
		return "", fmt.Errorf("%w: token expired", ErrUnauthorized)
	}

	if a.cache != nil {
		ttl := min(a.cacheTTL, accessToken.ExpiresAt.Sub(now))
		if err := a.cache.Set(ctx, token, accessToken.AccountID, ttl); err != nil {
			a.logger.Warn("Token cache update failed", zap.Error(err))
		}
	}

	return accessToken.AccountID, nil
}
