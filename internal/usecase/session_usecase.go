package usecase

import (
	"context"
	"time"

	"sso/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionView is one entry of the caller's device list.
type SessionView struct {
	ID           uuid.UUID `json:"id"`
	DeviceName   string    `json:"deviceName"`
	IPAddress    string    `json:"ipAddress"`
	UserAgent    string    `json:"userAgent"`
	LastActivity time.Time `json:"lastActivity"`
	CreatedAt    time.Time `json:"createdAt"`
	IsCurrent    bool      `json:"isCurrent"`
}

// SessionUsecase manages sessions, refresh token rotation and request authentication.
type SessionUsecase interface {
	CreateSession(ctx context.Context, userID uuid.UUID, device entity.DeviceInfo) (uuid.UUID, error)

	// IssueRefreshToken returns the raw secret once; only its digest is stored.
	IssueRefreshToken(ctx context.Context, userID, sessionID uuid.UUID) (string, error)

	// RotateRefreshToken consumes secret and returns a new pair for the same session.
	RotateRefreshToken(ctx context.Context, secret string) (*AuthOutput, error)

	// RevokeSession revokes the session and every refresh token issued for it.
	RevokeSession(ctx context.Context, sessionID uuid.UUID) error

	// RevokeAllSessionsForUser returns the number of sessions that were active.
	RevokeAllSessionsForUser(ctx context.Context, userID uuid.UUID) (int, error)

	ListSessions(ctx context.Context, userID, currentSessionID uuid.UUID) ([]*SessionView, error)

	// RevokeOwnSession revokes one of userID's sessions, typically another device.
	RevokeOwnSession(ctx context.Context, userID, sessionID uuid.UUID) error

	// Authenticate resolves a bearer token to the caller's identity.
	Authenticate(ctx context.Context, accessToken string) (*entity.Identity, error)
}
