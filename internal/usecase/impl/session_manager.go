package impl

import (
	"context"
	"time"

	"sso/internal/domain/entity"
	"sso/internal/domain/repository"
	"sso/internal/domain/service"
	"sso/internal/errors"
	"sso/internal/usecase"

	"github.com/google/uuid"
)

// sessionManager holds the session and refresh token rules shared by every service that opens
// or closes sessions. All methods work on the caller's transaction.
type sessionManager struct {
	tokens     service.TokenService
	opaque     service.OpaqueTokenService
	refreshTTL time.Duration
}

func (m *sessionManager) createSession(
	ctx context.Context,
	factory repository.RepositoryFactory,
	userID uuid.UUID,
	device entity.DeviceInfo,
	now time.Time,
) (*entity.Session, error) {
	deviceName := device.DeviceName
	if deviceName == "" {
		deviceName = inferDeviceName(device.UserAgent)
	}

	session := &entity.Session{
		UserID:     userID,
		IPAddress:  device.IPAddress,
		UserAgent:  device.UserAgent,
		DeviceName: deviceName,
		Payload: entity.SessionPayload{
			LoginMethod: entity.LoginMethodPassword,
			RememberMe:  device.RememberMe,
			Latitude:    device.Latitude,
			Longitude:   device.Longitude,
		},
		LastActivity: now,
		CreatedAt:    now,
	}
	if err := factory.NewSessionRepository().Create(ctx, session); err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	return session, nil
}

func (m *sessionManager) issueRefreshToken(
	ctx context.Context,
	factory repository.RepositoryFactory,
	userID, sessionID uuid.UUID,
	now time.Time,
) (string, error) {
	raw, hash, err := m.opaque.Generate(refreshTokenBytes)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate refresh token")
	}

	token := &entity.RefreshToken{
		UserID:    userID,
		SessionID: sessionID,
		TokenHash: hash,
		ExpiresAt: now.Add(m.refreshTTL),
		CreatedAt: now,
	}
	if err := factory.NewRefreshTokenRepository().Create(ctx, token); err != nil {
		return "", errors.Wrap(err, "failed to store refresh token")
	}

	return raw, nil
}

// issuePair signs an access token for the session and mints its refresh token.
func (m *sessionManager) issuePair(
	ctx context.Context,
	factory repository.RepositoryFactory,
	userID, sessionID uuid.UUID,
	now time.Time,
) (*usecase.AuthOutput, error) {
	accessToken, err := m.tokens.IssueAccessToken(sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, err := m.issueRefreshToken(ctx, factory, userID, sessionID, now)
	if err != nil {
		return nil, err
	}

	return &usecase.AuthOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(m.tokens.AccessTokenTTL().Seconds()),
		TokenType:    usecase.TokenTypeBearer,
	}, nil
}

// revokeSession revokes the session and cascades to its refresh tokens.
// It reports false when the session was already revoked.
func (m *sessionManager) revokeSession(
	ctx context.Context,
	factory repository.RepositoryFactory,
	sessionID uuid.UUID,
	now time.Time,
) (bool, error) {
	revoked, err := factory.NewSessionRepository().Revoke(ctx, sessionID, now)
	if err != nil {
		return false, errors.Wrap(err, "failed to revoke session")
	}

	if _, err := factory.NewRefreshTokenRepository().RevokeBySession(ctx, sessionID, now); err != nil {
		return false, errors.Wrap(err, "failed to revoke session refresh tokens")
	}

	return revoked, nil
}

// revokeAllForUser revokes every active session of the user and all of the user's refresh tokens.
func (m *sessionManager) revokeAllForUser(
	ctx context.Context,
	factory repository.RepositoryFactory,
	userID uuid.UUID,
	now time.Time,
) ([]uuid.UUID, error) {
	sessionIDs, err := factory.NewSessionRepository().RevokeAllByUser(ctx, userID, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to revoke user sessions")
	}

	if _, err := factory.NewRefreshTokenRepository().RevokeByUser(ctx, userID, now); err != nil {
		return nil, errors.Wrap(err, "failed to revoke user refresh tokens")
	}

	return sessionIDs, nil
}
