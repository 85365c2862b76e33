package impl

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	deliverycontext "sso/internal/delivery/context"
	"sso/internal/domain/entity"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/domain/repository"
	"sso/internal/domain/service"
	"sso/internal/errors"
	"sso/internal/usecase"

	"github.com/google/uuid"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager            repository.TransactionManager
	hasher               service.PasswordHasher
	opaque               service.OpaqueTokenService
	sessions             *sessionManager
	notifier             *securityNotifier
	audit                service.AuditLogger
	mailer               service.Mailer
	passwordResetTTL     time.Duration
	emailVerificationTTL time.Duration
	logger               *slog.Logger
	now                  func() time.Time
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params SecurityParams) usecase.AccountUsecase {
	return &accountService{
		txManager:            params.TxManager,
		hasher:               params.Hasher,
		opaque:               params.Opaque,
		sessions:             params.sessionManager(),
		notifier:             params.notifier(),
		audit:                params.Audit,
		mailer:               params.Mailer,
		passwordResetTTL:     params.Config.Auth.PasswordResetTTL,
		emailVerificationTTL: params.Config.Auth.EmailVerificationTTL,
		logger:               params.Logger,
		now:                  time.Now,
	}
}

func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *accountService) GetMe(ctx context.Context, userID uuid.UUID) (*usecase.MeOutput, error) {
	var output *usecase.MeOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.NewUserRepository().FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}

		memberships, err := repoFactory.NewTenantRepository().ListMemberships(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list memberships")
		}

		entries, err := repoFactory.NewConfigRepository().ListUserConfig(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to list user config")
		}

		views := make([]*usecase.MembershipView, 0, len(memberships))
		for _, m := range memberships {
			views = append(views, newMembershipView(m, user.LastTenantID))
		}

		output = &usecase.MeOutput{
			User: &usecase.UserProfile{
				ID:               user.ID,
				Name:             user.Name,
				Username:         user.Username,
				Email:            user.Email,
				Phone:            user.Phone,
				ProfilePhotoPath: user.ProfilePhotoPath,
				EmailVerifiedAt:  user.EmailVerifiedAt,
				LastTenantID:     user.LastTenantID,
				LastLoginAt:      user.LastLoginAt,
			},
			Memberships: views,
			Config:      entity.MergeConfig(entity.DefaultUserConfig, entries),
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func newMembershipView(m *entity.Membership, currentTenantID *uuid.UUID) *usecase.MembershipView {
	view := &usecase.MembershipView{
		TenantID:  m.TenantID,
		Role:      m.Role().String(),
		IsActive:  m.IsActive,
		IsCurrent: currentTenantID != nil && *currentTenantID == m.TenantID,
	}
	if m.Tenant != nil {
		view.Name = m.Tenant.Name
		view.Code = m.Tenant.Code
		view.LogoPath = m.Tenant.LogoPath
		view.TenantStatus = m.Tenant.Status()
	}

	return view
}

func (srv *accountService) SwitchTenant(ctx context.Context, userID, tenantID uuid.UUID) (*usecase.MembershipView, error) {
	var view *usecase.MembershipView

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		membership, err := repoFactory.NewTenantRepository().FindMembership(ctx, userID, tenantID)
		if err != nil {
			if errors.Is(err, repository.ErrMembershipNotFound) {
				return domainerrors.ErrAccessDenied
			}

			return errors.Wrap(err, "failed to find membership")
		}
		if !membership.IsActive {
			return domainerrors.ErrMembershipInactive
		}
		if !membership.Tenant.IsUsable() {
			return domainerrors.ErrTenantSwitchUnavailable
		}

		if err := repoFactory.NewUserRepository().UpdateLastTenant(ctx, userID, tenantID); err != nil {
			return errors.Wrap(err, "failed to update last tenant")
		}

		view = newMembershipView(membership, &tenantID)

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.audit.Log(ctx, auditTenantSwitched, auditEntryFor(&userID, map[string]any{
		"tenant_id": tenantID.String(),
	}, "tenant"))
	srv.log(ctx).Info("Tenant switched",
		slog.String("user_id", userID.String()),
		slog.String("tenant_id", tenantID.String()),
	)

	return view, nil
}

func (srv *accountService) ToggleUserLocked(ctx context.Context, actorID, targetID uuid.UUID) (*usecase.ToggleLockOutput, error) {
	now := srv.now()
	var output *usecase.ToggleLockOutput
	var revoked []uuid.UUID
	var tenantID uuid.UUID

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()
		tenantRepo := repoFactory.NewTenantRepository()

		actor, err := userRepo.FindByID(ctx, actorID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to find actor")
		}
		if actor.LastTenantID == nil {
			return domainerrors.ErrNoActiveTenant
		}
		tenantID = *actor.LastTenantID

		ownership, err := tenantRepo.FindMembership(ctx, actorID, tenantID)
		if err != nil && !errors.Is(err, repository.ErrMembershipNotFound) {
			return errors.Wrap(err, "failed to find actor membership")
		}
		if ownership == nil || !ownership.IsOwner || !ownership.IsActive {
			return domainerrors.ErrOwnerPermissionRequired
		}

		if _, err := tenantRepo.FindMembership(ctx, targetID, tenantID); err != nil {
			if errors.Is(err, repository.ErrMembershipNotFound) {
				return domainerrors.ErrUserNotInTenant
			}

			return errors.Wrap(err, "failed to find target membership")
		}

		if targetID == actorID {
			return domainerrors.ErrCannotLockSelf
		}

		target, err := userRepo.FindByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotInTenant
			}

			return errors.Wrap(err, "failed to find target user")
		}

		if target.IsLocked {
			target.IsLocked = false
			target.LockedAt = nil
			target.ForceLogoutAt = nil
			target.ClearLoginFailures()
		} else {
			target.IsLocked = true
			target.LockedAt = &now
		}
		if err := userRepo.UpdateLockState(ctx, target); err != nil {
			return errors.Wrap(err, "failed to update lock state")
		}

		if target.IsLocked {
			revoked, err = srv.sessions.revokeAllForUser(ctx, repoFactory, targetID, now)
			if err != nil {
				return err
			}
		}

		output = &usecase.ToggleLockOutput{
			UserID:             targetID,
			IsLocked:           target.IsLocked,
			SessionsTerminated: len(revoked),
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.notifier.sessionsRevoked(ctx, revoked...)
	srv.notifier.publish(ctx, service.EventAccountLockToggled, targetID, &tenantID, &actorID, map[string]any{
		"is_locked": output.IsLocked,
	})
	srv.audit.Log(ctx, auditLockToggled, auditEntryFor(&actorID, map[string]any{
		"target_user_id": targetID.String(),
		"is_locked":      output.IsLocked,
	}, "lockout", "owner"))
	srv.log(ctx).Info("User lock toggled",
		slog.String("actor_id", actorID.String()),
		slog.String("target_id", targetID.String()),
		slog.Bool("is_locked", output.IsLocked),
	)

	return output, nil
}

// ForgotPassword always succeeds from the caller's point of view.
func (srv *accountService) ForgotPassword(ctx context.Context, email string) error {
	var user *entity.User
	var rawToken string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		user, err = repoFactory.NewUserRepository().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				user = nil

				return nil
			}

			return errors.Wrap(err, "failed to find user")
		}

		rawToken, err = srv.storeEmailToken(ctx, repoFactory, email, entity.EmailTokenPasswordReset, srv.passwordResetTTL)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to prepare password reset", slog.Any("error", err))

		return nil
	}
	if user == nil {
		srv.log(ctx).Info("Password reset requested for unknown email")

		return nil
	}

	if err := srv.mailer.SendPasswordReset(ctx, user.Email, user.Name, rawToken); err != nil {
		srv.log(ctx).Error("Failed to send password reset email", slog.Any("error", err))
	}

	return nil
}

func (srv *accountService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	if input.Password != input.PasswordConfirmation {
		return domainerrors.ErrPasswordMismatch
	}

	now := srv.now()
	var userID uuid.UUID
	var revoked []uuid.UUID
	var rejection error

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.NewEmailTokenRepository()

		if err := srv.checkEmailToken(ctx, tokenRepo, input.Email, input.Token, entity.EmailTokenPasswordReset, now); err != nil {
			var rejected *domainerrors.BaseError
			if errors.As(err, &rejected) {
				rejection = err

				return nil
			}

			return err
		}

		userRepo := repoFactory.NewUserRepository()
		user, err := userRepo.FindByEmail(ctx, input.Email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				rejection = domainerrors.ErrResetUserNotFound

				return nil
			}

			return errors.Wrap(err, "failed to find user")
		}
		userID = user.ID

		hash, err := srv.hasher.Hash(input.Password)
		if err != nil {
			return errors.Wrap(err, "failed to hash password")
		}
		if err := userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
			return errors.Wrap(err, "failed to update password")
		}
		if err := tokenRepo.Delete(ctx, input.Email, entity.EmailTokenPasswordReset); err != nil {
			return errors.Wrap(err, "failed to delete reset token")
		}

		revoked, err = srv.sessions.revokeAllForUser(ctx, repoFactory, user.ID, now)

		return err
	})
	if err != nil {
		srv.log(ctx).Error("Failed to reset password", slog.Any("error", err))

		return errors.Wrap(err, "failed to reset password")
	}
	if rejection != nil {
		return rejection
	}

	srv.notifier.sessionsRevoked(ctx, revoked...)
	srv.notifier.publish(ctx, service.EventPasswordReset, userID, nil, nil, map[string]any{
		"sessions_terminated": len(revoked),
	})
	srv.audit.Log(ctx, auditPasswordReset, auditEntryFor(&userID, nil, "password"))
	srv.log(ctx).Info("Password reset", slog.String("user_id", userID.String()))

	return nil
}

func (srv *accountService) SendEmailVerification(ctx context.Context, email string) error {
	var user *entity.User
	var rawToken string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		user, err = repoFactory.NewUserRepository().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrEmailNotFound
			}

			return errors.Wrap(err, "failed to find user")
		}
		if user.EmailVerifiedAt != nil {
			return domainerrors.ErrEmailAlreadyVerified
		}

		rawToken, err = srv.storeEmailToken(ctx, repoFactory, email, entity.EmailTokenEmailVerification, srv.emailVerificationTTL)

		return err
	})
	if err != nil {
		return err
	}

	if err := srv.mailer.SendEmailVerification(ctx, user.Email, user.Name, rawToken); err != nil {
		return errors.Wrap(err, "failed to send verification email")
	}

	return nil
}

func (srv *accountService) VerifyEmail(ctx context.Context, email, token string) error {
	now := srv.now()
	var userID uuid.UUID
	var rejection error

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenRepo := repoFactory.NewEmailTokenRepository()

		if err := srv.checkEmailToken(ctx, tokenRepo, email, token, entity.EmailTokenEmailVerification, now); err != nil {
			var rejected *domainerrors.BaseError
			if errors.As(err, &rejected) {
				rejection = err

				return nil
			}

			return err
		}

		userRepo := repoFactory.NewUserRepository()
		user, err := userRepo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				rejection = domainerrors.ErrEmailNotFound

				return nil
			}

			return errors.Wrap(err, "failed to find user")
		}
		userID = user.ID

		if err := userRepo.MarkEmailVerified(ctx, user.ID, now); err != nil {
			return errors.Wrap(err, "failed to mark email verified")
		}

		return errors.Wrap(tokenRepo.Delete(ctx, email, entity.EmailTokenEmailVerification), "failed to delete verification token")
	})
	if err != nil {
		return err
	}
	if rejection != nil {
		return rejection
	}

	srv.audit.Log(ctx, auditEmailVerified, auditEntryFor(&userID, nil, "email"))

	return nil
}

func (srv *accountService) storeEmailToken(
	ctx context.Context,
	repoFactory repository.RepositoryFactory,
	email string,
	purpose entity.EmailTokenPurpose,
	ttl time.Duration,
) (string, error) {
	raw, hash, err := srv.opaque.Generate(emailTokenBytes)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate email token")
	}

	now := srv.now()
	err = repoFactory.NewEmailTokenRepository().Upsert(ctx, &entity.EmailToken{
		Email:     email,
		Purpose:   purpose,
		TokenHash: hash,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to store email token")
	}

	return raw, nil
}

// checkEmailToken validates a presented token. An expired token is deleted; the caller must
// commit that deletion before reporting the rejection.
func (srv *accountService) checkEmailToken(
	ctx context.Context,
	tokenRepo repository.EmailTokenRepository,
	email, raw string,
	purpose entity.EmailTokenPurpose,
	now time.Time,
) error {
	invalid, expired := domainerrors.ErrInvalidResetToken, domainerrors.ErrResetTokenExpired
	if purpose == entity.EmailTokenEmailVerification {
		invalid, expired = domainerrors.ErrInvalidVerificationToken, domainerrors.ErrVerificationTokenExpired
	}

	stored, err := tokenRepo.Find(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTokenNotFound) {
			return invalid
		}

		return errors.Wrap(err, "failed to find email token")
	}

	if subtle.ConstantTimeCompare([]byte(stored.TokenHash), []byte(srv.opaque.Hash(raw))) != 1 {
		return invalid
	}

	if stored.IsExpired(now) {
		if err := tokenRepo.Delete(ctx, email, purpose); err != nil {
			return errors.Wrap(err, "failed to delete expired email token")
		}

		return expired
	}

	return nil
}
