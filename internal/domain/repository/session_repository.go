package repository

import (
	"context"
	"errors"
	"time"

	"sso/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session does not exist.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists device sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// FindWithUser loads the session and its live owner in one round trip.
	// The returned User is nil when the owner is missing or soft-deleted.
	FindWithUser(ctx context.Context, id uuid.UUID) (*entity.SessionWithUser, error)

	// ListActiveByUser returns non-revoked sessions ordered by last activity, newest first.
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)

	TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error

	// Revoke sets revoked_at only if the session is still active.
	// It reports false when the session was already revoked.
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// RevokeAllByUser revokes every active session of the user and returns their IDs.
	RevokeAllByUser(ctx context.Context, userID uuid.UUID, at time.Time) ([]uuid.UUID, error)
}
