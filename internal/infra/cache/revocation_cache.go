package cache

import (
	"context"
	"log/slog"
	"time"

	"sso/internal/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	revokedKeyPrefix = "sso:revoked-session:"

	// defaultRevocationTTL covers the lifetime of any access token issued before the revoke.
	defaultRevocationTTL = time.Hour
)

// RevocationCache flags revoked sessions so the authentication gate can reject them without
// touching the database. A nil client turns every call into a no-op.
type RevocationCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRevocationCacheWithClient wraps an existing client. client may be nil.
func NewRevocationCacheWithClient(client *redis.Client, logger *slog.Logger) *RevocationCache {
	return &RevocationCache{client: client, logger: logger}
}

// Enabled reports whether a Redis client backs the cache.
func (c *RevocationCache) Enabled() bool {
	return c.client != nil
}

func (c *RevocationCache) MarkRevoked(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultRevocationTTL
	}

	if err := c.client.Set(ctx, revokedKeyPrefix+sessionID.String(), "1", ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to mark session revoked")
	}

	return nil
}

func (c *RevocationCache) IsRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	if c.client == nil {
		return false, nil
	}

	n, err := c.client.Exists(ctx, revokedKeyPrefix+sessionID.String()).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to check session revocation")
	}

	return n > 0, nil
}
