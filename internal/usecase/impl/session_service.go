package impl

import (
	"context"
	"log/slog"
	"time"

	"sso/config"
	deliverycontext "sso/internal/delivery/context"
	"sso/internal/domain/entity"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/domain/repository"
	"sso/internal/domain/service"
	"sso/internal/errors"
	"sso/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// SecurityParams are the dependencies shared by the session, auth and account services.
type SecurityParams struct {
	fx.In

	TxManager repository.TransactionManager
	Hasher    service.PasswordHasher
	Tokens    service.TokenService
	Opaque    service.OpaqueTokenService
	Cache     service.SessionRevocationCache
	Publisher service.SecurityEventPublisher
	Audit     service.AuditLogger
	Mailer    service.Mailer
	Config    *config.Config
	Logger    *slog.Logger
}

func (p SecurityParams) sessionManager() *sessionManager {
	return &sessionManager{
		tokens:     p.Tokens,
		opaque:     p.Opaque,
		refreshTTL: p.Config.Auth.RefreshTokenTTL,
	}
}

func (p SecurityParams) notifier() *securityNotifier {
	return &securityNotifier{
		cache:     p.Cache,
		publisher: p.Publisher,
		cacheTTL:  p.Tokens.AccessTokenTTL(),
		logger:    p.Logger,
		now:       time.Now,
	}
}

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager repository.TransactionManager
	sessions  *sessionManager
	tokens    service.TokenService
	opaque    service.OpaqueTokenService
	cache     service.SessionRevocationCache
	notifier  *securityNotifier
	audit     service.AuditLogger
	logger    *slog.Logger
	now       func() time.Time
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SecurityParams) usecase.SessionUsecase {
	return &sessionService{
		txManager: params.TxManager,
		sessions:  params.sessionManager(),
		tokens:    params.Tokens,
		opaque:    params.Opaque,
		cache:     params.Cache,
		notifier:  params.notifier(),
		audit:     params.Audit,
		logger:    params.Logger,
		now:       time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *sessionService) CreateSession(ctx context.Context, userID uuid.UUID, device entity.DeviceInfo) (uuid.UUID, error) {
	var sessionID uuid.UUID

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		session, err := srv.sessions.createSession(ctx, repoFactory, userID, device, srv.now())
		if err != nil {
			return err
		}
		sessionID = session.ID

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return sessionID, nil
}

func (srv *sessionService) IssueRefreshToken(ctx context.Context, userID, sessionID uuid.UUID) (string, error) {
	var secret string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		secret, err = srv.sessions.issueRefreshToken(ctx, repoFactory, userID, sessionID, srv.now())

		return err
	})
	if err != nil {
		return "", err
	}

	return secret, nil
}

// RotateRefreshToken follows the failure order unknown, revoked, expired, session terminated.
// Rejections that change state (expiry) are committed before the failure is returned.
func (srv *sessionService) RotateRefreshToken(ctx context.Context, secret string) (*usecase.AuthOutput, error) {
	now := srv.now()
	hash := srv.opaque.Hash(secret)

	var output *usecase.AuthOutput
	var rejection error

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.NewRefreshTokenRepository()

		token, err := refreshRepo.FindByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				rejection = domainerrors.ErrInvalidRefreshToken

				return nil
			}

			return errors.Wrap(err, "failed to find refresh token")
		}

		if token.Revoked {
			rejection = domainerrors.ErrRefreshTokenRevoked

			return nil
		}

		if token.IsExpired(now) {
			if _, err := refreshRepo.RevokeIfActive(ctx, token.ID, now); err != nil {
				return errors.Wrap(err, "failed to revoke expired refresh token")
			}
			rejection = domainerrors.ErrRefreshTokenExpired

			return nil
		}

		sessionRepo := repoFactory.NewSessionRepository()
		session, err := sessionRepo.FindByID(ctx, token.SessionID)
		if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			return errors.Wrap(err, "failed to find session")
		}
		if session == nil || session.IsRevoked() {
			rejection = domainerrors.ErrSessionTerminated

			return nil
		}

		consumed, err := refreshRepo.RevokeIfActive(ctx, token.ID, now)
		if err != nil {
			return errors.Wrap(err, "failed to consume refresh token")
		}
		if !consumed {
			// A concurrent rotation won the compare-and-swap.
			rejection = domainerrors.ErrRefreshTokenRevoked

			return nil
		}

		if err := sessionRepo.TouchActivity(ctx, session.ID, now); err != nil {
			return errors.Wrap(err, "failed to touch session activity")
		}

		output, err = srv.sessions.issuePair(ctx, repoFactory, token.UserID, session.ID, now)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to rotate refresh token", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to rotate refresh token")
	}
	if rejection != nil {
		srv.log(ctx).Info("Refresh token rejected", slog.Any("reason", rejection))

		return nil, rejection
	}

	return output, nil
}

func (srv *sessionService) RevokeSession(ctx context.Context, sessionID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		_, err := srv.sessions.revokeSession(ctx, repoFactory, sessionID, srv.now())

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke session", slog.Any("error", err), slog.String("session_id", sessionID.String()))

		return err
	}

	srv.notifier.sessionsRevoked(ctx, sessionID)
	srv.log(ctx).Info("Session revoked", slog.String("session_id", sessionID.String()))

	return nil
}

func (srv *sessionService) RevokeAllSessionsForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var revoked []uuid.UUID

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		revoked, err = srv.sessions.revokeAllForUser(ctx, repoFactory, userID, srv.now())

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke all sessions", slog.Any("error", err), slog.String("user_id", userID.String()))

		return 0, err
	}

	srv.notifier.sessionsRevoked(ctx, revoked...)
	srv.notifier.publish(ctx, service.EventSessionsRevoked, userID, nil, &userID, map[string]any{
		"sessions_terminated": len(revoked),
	})
	srv.audit.Log(ctx, auditSessionsRevokedAll, auditEntryFor(&userID, map[string]any{
		"sessions_terminated": len(revoked),
	}, "logout"))

	srv.log(ctx).Info("All sessions revoked",
		slog.String("user_id", userID.String()),
		slog.Int("sessions_terminated", len(revoked)),
	)

	return len(revoked), nil
}

func (srv *sessionService) ListSessions(ctx context.Context, userID, currentSessionID uuid.UUID) ([]*usecase.SessionView, error) {
	var sessions []*entity.Session

	err := srv.txManager.Read(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		sessions, err = repoFactory.NewSessionRepository().ListActiveByUser(ctx, userID)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}

	views := make([]*usecase.SessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, &usecase.SessionView{
			ID:           s.ID,
			DeviceName:   s.DeviceName,
			IPAddress:    s.IPAddress,
			UserAgent:    s.UserAgent,
			LastActivity: s.LastActivity,
			CreatedAt:    s.CreatedAt,
			IsCurrent:    s.ID == currentSessionID,
		})
	}

	return views, nil
}

func (srv *sessionService) RevokeOwnSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		session, err := repoFactory.NewSessionRepository().FindByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return domainerrors.ErrManagedSessionNotFound
			}

			return errors.Wrap(err, "failed to find session")
		}

		// Another user's session is reported as missing.
		if session.UserID != userID {
			return domainerrors.ErrManagedSessionNotFound
		}
		if session.IsRevoked() {
			return domainerrors.ErrSessionAlreadyRevoked
		}

		revoked, err := srv.sessions.revokeSession(ctx, repoFactory, sessionID, srv.now())
		if err != nil {
			return err
		}
		if !revoked {
			return domainerrors.ErrSessionAlreadyRevoked
		}

		return nil
	})
	if err != nil {
		return err
	}

	srv.notifier.sessionsRevoked(ctx, sessionID)
	srv.audit.Log(ctx, auditSessionRevoked, auditEntryFor(&userID, map[string]any{
		"session_id": sessionID.String(),
	}, "session"))

	return nil
}

// Authenticate evaluates the gate checks in a fixed order and stops at the first failure.
func (srv *sessionService) Authenticate(ctx context.Context, accessToken string) (*entity.Identity, error) {
	if accessToken == "" {
		return nil, domainerrors.ErrInvalidToken
	}

	claims, err := srv.tokens.ParseAccessToken(accessToken)
	if err != nil {
		srv.log(ctx).Debug("Access token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrInvalidToken
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, domainerrors.ErrInvalidTokenFormat
	}

	if srv.cache != nil {
		revoked, err := srv.cache.IsRevoked(ctx, sessionID)
		if err != nil {
			srv.log(ctx).Warn("Revocation cache unavailable, falling back to store", slog.Any("error", err))
		} else if revoked {
			return nil, domainerrors.ErrSessionRevoked
		}
	}

	var found *entity.SessionWithUser
	err = srv.txManager.Read(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		found, err = repoFactory.NewSessionRepository().FindWithUser(ctx, sessionID)

		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, domainerrors.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to resolve session")
	}

	now := srv.now()
	user := found.User
	switch {
	case found.Session.IsRevoked():
		return nil, domainerrors.ErrSessionRevoked
	case user == nil || user.IsDeleted():
		return nil, domainerrors.ErrUserNotFound
	case user.IsLocked:
		return nil, domainerrors.ErrGateAccountLocked
	case user.IsTemporarilyLocked(now):
		return nil, domainerrors.ErrTemporaryLock.WithDetails(domainerrors.LockDetails{
			MinutesRemaining: user.MinutesUntilUnlock(now),
			LockedUntil:      user.TemporaryLockUntil.UTC().Format(time.RFC3339),
		})
	case user.IsForceLoggedOut(now):
		return nil, domainerrors.ErrForceLogout.WithDetails(domainerrors.LockDetails{
			LockedUntil: user.ForceLogoutAt.UTC().Format(time.RFC3339),
		})
	}

	return &entity.Identity{
		UserID:    user.ID,
		SessionID: found.Session.ID,
		TenantID:  user.LastTenantID,
	}, nil
}
