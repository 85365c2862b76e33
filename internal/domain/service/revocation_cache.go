package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionRevocationCache short-circuits the authentication gate for recently revoked sessions.
// The store stays authoritative; a cache miss never authorizes anything on its own.
type SessionRevocationCache interface {
	MarkRevoked(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error)
}
