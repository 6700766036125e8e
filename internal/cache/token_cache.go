package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// TokenCache keeps one Redis record per issued token (keyed by jti) with a
// TTL matching the token expiry. Deleting the record revokes the token.
type TokenCache struct {
	client *redisv9.Client
}

func NewTokenCache(client *redisv9.Client) *TokenCache {
	return &TokenCache{client: client}
}

func tokenKey(jti string) string {
	return fmt.Sprintf("auth:token:%s", jti)
}

func (c *TokenCache) Save(ctx context.Context, jti string, userID uint, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if err := c.client.Set(ctx, tokenKey(jti), strconv.FormatUint(uint64(userID), 10), ttl).Err(); err != nil {
		return fmt.Errorf("save token failed: %w", err)
	}
	return nil
}

// IsActive reports whether the token has not been revoked and not yet
// expired out of Redis.
func (c *TokenCache) IsActive(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, tokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check token failed: %w", err)
	}
	return n > 0, nil
}

// Revoke deletes the token record. Revoking an unknown token is not an error.
func (c *TokenCache) Revoke(ctx context.Context, jti string) error {
	if err := c.client.Del(ctx, tokenKey(jti)).Err(); err != nil {
		return fmt.Errorf("revoke token failed: %w", err)
	}
	return nil
}
