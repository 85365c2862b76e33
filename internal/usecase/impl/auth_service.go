package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "sso/internal/delivery/context"
	"sso/internal/domain/entity"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/domain/policy"
	"sso/internal/domain/repository"
	"sso/internal/domain/service"
	"sso/internal/errors"
	"sso/internal/usecase"

	"github.com/google/uuid"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	opaque    service.OpaqueTokenService
	sessions  *sessionManager
	notifier  *securityNotifier
	audit     service.AuditLogger
	mailer    service.Mailer
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService is the constructor for authService.
func NewAuthService(params SecurityParams) usecase.AuthUsecase {
	return &authService{
		txManager: params.TxManager,
		hasher:    params.Hasher,
		opaque:    params.Opaque,
		sessions:  params.sessionManager(),
		notifier:  params.notifier(),
		audit:     params.Audit,
		mailer:    params.Mailer,
		logger:    params.Logger,
		now:       time.Now,
	}
}

func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// loginAttempt carries the outcome of one login transaction. A rejection is returned only after
// the transaction commits, so lockout bookkeeping survives the failed login.
type loginAttempt struct {
	input     *usecase.LoginInput
	now       time.Time
	user      *entity.User
	output    *usecase.AuthOutput
	rejection error
	// lockedSessions is set when the attempt escalated to a permanent lock.
	lockedSessions []uuid.UUID
	permanentLock  bool
}

func (a *loginAttempt) reject(err error) error {
	a.rejection = err

	return nil
}

func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	attempt := &loginAttempt{input: input, now: srv.now()}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return srv.evaluate(ctx, repoFactory, attempt)
	})
	if err != nil {
		srv.log(ctx).Error("Login failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to login")
	}

	if attempt.permanentLock {
		srv.afterPermanentLock(ctx, attempt)
	}

	if attempt.rejection != nil {
		srv.auditFailure(ctx, attempt)

		return nil, attempt.rejection
	}

	userID := attempt.user.ID
	srv.audit.Log(ctx, auditLoginSucceeded, auditEntryFor(&userID, map[string]any{
		"device_name": attempt.input.Device.DeviceName,
		"remember_me": attempt.input.Device.RememberMe,
	}, "login"))
	srv.log(ctx).Info("User logged in", slog.String("user_id", userID.String()))

	return attempt.output, nil
}

// evaluate runs the ordered login checks and stops at the first rejection.
func (srv *authService) evaluate(ctx context.Context, repoFactory repository.RepositoryFactory, attempt *loginAttempt) error {
	userRepo := repoFactory.NewUserRepository()
	now := attempt.now

	user, err := userRepo.FindByIdentifier(ctx, attempt.input.UsernameOrEmail)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to find user")
		}
		if err := srv.recordFailedAttempt(ctx, repoFactory, nil, attempt); err != nil {
			return err
		}

		return attempt.reject(domainerrors.ErrInvalidCredentials)
	}
	attempt.user = user

	if user.IsLocked {
		return attempt.reject(domainerrors.ErrAccountLocked)
	}

	if user.IsTemporarilyLocked(now) {
		return attempt.reject(domainerrors.ErrTemporaryLocked.WithDetails(domainerrors.LockDetails{
			MinutesRemaining: user.MinutesUntilUnlock(now),
			LockedUntil:      user.TemporaryLockUntil.UTC().Format(time.RFC3339),
		}))
	}

	if user.TemporaryLockElapsed(now) {
		if err := userRepo.ResetLoginFailures(ctx, user.ID); err != nil {
			return errors.Wrap(err, "failed to clear elapsed temporary lock")
		}
		user.ClearLoginFailures()
	}

	memberships, err := repoFactory.NewTenantRepository().ListMemberships(ctx, user.ID)
	if err != nil {
		return errors.Wrap(err, "failed to list memberships")
	}
	if !memberships.HasActive() {
		return attempt.reject(domainerrors.ErrNoActiveTenant)
	}
	validMembership := memberships.FirstValid()
	if validMembership == nil {
		return attempt.reject(domainerrors.ErrTenantInactiveOrRevoked)
	}

	if user.IsForceLoggedOut(now) {
		return attempt.reject(domainerrors.ErrAccountSuspended.WithDetails(domainerrors.LockDetails{
			LockedUntil: user.ForceLogoutAt.UTC().Format(time.RFC3339),
		}))
	}

	if !srv.hasher.Check(attempt.input.Password, user.PasswordHash) {
		return srv.applyLockout(ctx, repoFactory, attempt)
	}

	return srv.complete(ctx, repoFactory, attempt, validMembership)
}

// applyLockout records the failure, increments the counter atomically and applies the policy tier.
func (srv *authService) applyLockout(ctx context.Context, repoFactory repository.RepositoryFactory, attempt *loginAttempt) error {
	user := attempt.user
	now := attempt.now
	userRepo := repoFactory.NewUserRepository()

	if err := srv.recordFailedAttempt(ctx, repoFactory, &user.ID, attempt); err != nil {
		return err
	}

	count, err := userRepo.IncrementFailedLoginCounter(ctx, user.ID)
	if err != nil {
		return errors.Wrap(err, "failed to increment failed login counter")
	}
	user.FailedLoginCounter = count

	action := policy.Evaluate(count)
	details := domainerrors.LockDetails{FailedAttempts: count}

	switch action.Kind {
	case policy.LockNone:
		return attempt.reject(domainerrors.ErrInvalidCredentials)

	case policy.LockTemporary:
		until := now.Add(action.Duration)
		user.TemporaryLockUntil = &until
		if err := userRepo.UpdateLockState(ctx, user); err != nil {
			return errors.Wrap(err, "failed to apply temporary lock")
		}

		details.LockedUntil = until.UTC().Format(time.RFC3339)
		details.MinutesRemaining = int(action.Duration / time.Minute)
		if action.Reason == policy.ReasonTemporary15Min {
			return attempt.reject(domainerrors.ErrTemporaryLocked15Min.WithDetails(details))
		}

		return attempt.reject(domainerrors.ErrTemporaryLocked5Min.WithDetails(details))

	case policy.LockPermanent:
		forceLogoutAt := now.Add(policy.ForceLogoutWindow)
		user.IsLocked = true
		user.LockedAt = &now
		user.ForceLogoutAt = &forceLogoutAt
		if err := userRepo.UpdateLockState(ctx, user); err != nil {
			return errors.Wrap(err, "failed to apply permanent lock")
		}

		revoked, err := srv.sessions.revokeAllForUser(ctx, repoFactory, user.ID, now)
		if err != nil {
			return err
		}
		attempt.lockedSessions = revoked
		attempt.permanentLock = true

		details.LockedUntil = forceLogoutAt.UTC().Format(time.RFC3339)

		return attempt.reject(domainerrors.ErrAccountPermanentlyLocked.WithDetails(details))
	}

	return attempt.reject(domainerrors.ErrInvalidCredentials)
}

// complete finishes a successful login: bookkeeping, session and token pair.
func (srv *authService) complete(
	ctx context.Context,
	repoFactory repository.RepositoryFactory,
	attempt *loginAttempt,
	validMembership *entity.Membership,
) error {
	user := attempt.user
	now := attempt.now
	device := attempt.input.Device

	user.ClearLoginFailures()
	user.LastLoginAt = &now
	if device.IPAddress != "" {
		ip := device.IPAddress
		user.LastLoginIP = &ip
	}
	if user.LastTenantID == nil {
		tenantID := validMembership.TenantID
		user.LastTenantID = &tenantID
	}
	if device.RememberMe {
		_, hash, err := srv.opaque.Generate(rememberTokenBytes)
		if err != nil {
			return errors.Wrap(err, "failed to generate remember token")
		}
		user.RememberTokenHash = &hash
	}

	if err := repoFactory.NewUserRepository().RecordSuccessfulLogin(ctx, user); err != nil {
		return errors.Wrap(err, "failed to record successful login")
	}

	session, err := srv.sessions.createSession(ctx, repoFactory, user.ID, device, now)
	if err != nil {
		return err
	}

	output, err := srv.sessions.issuePair(ctx, repoFactory, user.ID, session.ID, now)
	if err != nil {
		return err
	}
	output.User = usecase.NewUserSummary(user)
	attempt.output = output

	return nil
}

func (srv *authService) recordFailedAttempt(
	ctx context.Context,
	repoFactory repository.RepositoryFactory,
	userID *uuid.UUID,
	attempt *loginAttempt,
) error {
	err := repoFactory.NewLoginAttemptRepository().Record(ctx, &entity.FailedLoginAttempt{
		UserID:          userID,
		UsernameOrEmail: attempt.input.UsernameOrEmail,
		IPAddress:       attempt.input.Device.IPAddress,
		UserAgent:       attempt.input.Device.UserAgent,
		AttemptedAt:     attempt.now,
	})
	if err != nil {
		return errors.Wrap(err, "failed to record failed login attempt")
	}

	return nil
}

func (srv *authService) auditFailure(ctx context.Context, attempt *loginAttempt) {
	reason := "unknown"
	var appErr domainerrors.AppError
	if errors.As(attempt.rejection, &appErr) {
		reason = appErr.ErrorCode()
	}

	var userID *uuid.UUID
	if attempt.user != nil {
		userID = &attempt.user.ID
	}

	entry := auditEntryFor(userID, map[string]any{
		"reason":            reason,
		"username_or_email": attempt.input.UsernameOrEmail,
	}, "login", "failed")
	entry.IPAddress = attempt.input.Device.IPAddress
	entry.UserAgent = attempt.input.Device.UserAgent
	srv.audit.Log(ctx, auditLoginFailed, entry)

	srv.log(ctx).Info("Login rejected", slog.String("reason", reason))
}

// afterPermanentLock runs the side effects of an escalation once the lock is committed.
func (srv *authService) afterPermanentLock(ctx context.Context, attempt *loginAttempt) {
	user := attempt.user

	srv.notifier.sessionsRevoked(ctx, attempt.lockedSessions...)
	srv.notifier.publish(ctx, service.EventAccountPermanentlyLocked, user.ID, user.LastTenantID, nil, map[string]any{
		"failed_attempts":     user.FailedLoginCounter,
		"sessions_terminated": len(attempt.lockedSessions),
	})
	srv.audit.Log(ctx, auditAccountLocked, auditEntryFor(&user.ID, map[string]any{
		"failed_attempts": user.FailedLoginCounter,
		"force_logout_at": user.ForceLogoutAt,
	}, "lockout"))

	if err := srv.mailer.SendAccountLocked(ctx, user.Email, user.Name, *user.ForceLogoutAt); err != nil {
		srv.log(ctx).Warn("Failed to send account locked email", slog.Any("error", err))
	}

	srv.log(ctx).Warn("Account permanently locked",
		slog.String("user_id", user.ID.String()),
		slog.Int("failed_attempts", user.FailedLoginCounter),
	)
}
