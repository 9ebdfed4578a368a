package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prperemyshlev/account-service/pkg/database"
	"github.com/redis/go-redis/v9"
)

const tokenCachePrefix = "access_token:"

// RedisTokenCache caches token to account id lookups in Redis.
// Keys are SHA-256 digests so raw tokens never leave the process.
type RedisTokenCache struct {
	redis *database.Redis
}

// NewRedisTokenCache creates a new Redis backed token cache
func NewRedisTokenCache(redis *database.Redis) *RedisTokenCache {
	return &RedisTokenCache{redis: redis}
}

// Get returns the cached account id of token
func (c *RedisTokenCache) Get(ctx context.Context, token string) (string, bool, error) {
	accountID, err := c.redis.Client.Get(ctx, c.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read token cache: %w", err)
	}
	return accountID, true, nil
}

// Set caches the account id of token for ttl
func (c *RedisTokenCache) Set(ctx context.Context, token, accountID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.redis.Client.Set(ctx, c.key(token), accountID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

func (c *RedisTokenCache) key(token string) string {
	hash := sha256.Sum256([]byte(token))
	return tokenCachePrefix + hex.EncodeToString(hash[:])
}
