package repository

import (
	"context"
	"errors"
	"time"

	"sso/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrRefreshTokenNotFound is returned when no token matches the presented hash.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository persists refresh token digests.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error

	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// RevokeIfActive is a compare-and-swap on revoked = false.
	// It reports false when another caller revoked the token first.
	RevokeIfActive(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	RevokeBySession(ctx context.Context, sessionID uuid.UUID, at time.Time) (int64, error)

	RevokeByUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}
