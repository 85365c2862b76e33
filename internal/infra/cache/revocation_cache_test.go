package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"sso/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(t *testing.T) (*RevocationCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRevocationCacheWithClient(client, discardLogger()), mr
}

func TestRevocationCache_MarkAndCheck(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	sessionID := uuid.New()

	revoked, err := c.IsRevoked(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, c.MarkRevoked(ctx, sessionID, 10*time.Minute))

	revoked, err = c.IsRevoked(ctx, sessionID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, 10*time.Minute, mr.TTL(revokedKeyPrefix+sessionID.String()))

	mr.FastForward(11 * time.Minute)

	revoked, err = c.IsRevoked(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationCache_DefaultTTL(t *testing.T) {
	c, mr := newTestCache(t)
	sessionID := uuid.New()

	require.NoError(t, c.MarkRevoked(context.Background(), sessionID, 0))
	assert.Equal(t, defaultRevocationTTL, mr.TTL(revokedKeyPrefix+sessionID.String()))
}

func TestRevocationCache_Disabled(t *testing.T) {
	c := NewRevocationCacheWithClient(nil, discardLogger())
	ctx := context.Background()

	assert.False(t, c.Enabled())
	require.NoError(t, c.MarkRevoked(ctx, uuid.New(), time.Minute))

	revoked, err := c.IsRevoked(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationCache_ReportsRedisFailure(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.IsRevoked(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	client, err := Connect(&config.RedisConfig{URL: "redis://:secret@localhost:6380/2"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)
	assert.Equal(t, "secret", client.Options().Password)

	client, err = Connect(&config.RedisConfig{URL: "localhost:6379", DB: 1})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", client.Options().Addr)
	assert.Equal(t, 1, client.Options().DB)

	_, err = Connect(&config.RedisConfig{URL: "redis://:bad@host:notaport"})
	assert.Error(t, err)
}
