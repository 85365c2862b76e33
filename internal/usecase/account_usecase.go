package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// ResetPasswordInput carries a password reset request.
type ResetPasswordInput struct {
	Email                string
	Token                string
	Password             string
	PasswordConfirmation string
}

// --- Output DTOs ---

// UserProfile is the caller's own profile.
type UserProfile struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Phone            *string    `json:"phone"`
	ProfilePhotoPath *string    `json:"profilePhotoPath"`
	EmailVerifiedAt  *time.Time `json:"emailVerifiedAt"`
	LastTenantID     *uuid.UUID `json:"lastTenantId"`
	LastLoginAt      *time.Time `json:"lastLoginAt"`
}

// MembershipView describes one tenant the caller belongs to.
type MembershipView struct {
	TenantID     uuid.UUID `json:"tenantId"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	LogoPath     *string   `json:"logoPath"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	TenantStatus string    `json:"tenantStatus"`
	IsCurrent    bool      `json:"isCurrent"`
}

// MeOutput is the authenticated caller's profile, tenants and preferences.
type MeOutput struct {
	User        *UserProfile      `json:"user"`
	Memberships []*MembershipView `json:"memberships"`
	Config      map[string]string `json:"config"`
}

// ToggleLockOutput reports the target's lock state after a toggle.
type ToggleLockOutput struct {
	UserID             uuid.UUID `json:"userId"`
	IsLocked           bool      `json:"isLocked"`
	SessionsTerminated int       `json:"sessionsTerminated"`
}

// AccountUsecase covers profile, tenant switching, owner lock management and email flows.
type AccountUsecase interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*MeOutput, error)

	SwitchTenant(ctx context.Context, userID, tenantID uuid.UUID) (*MembershipView, error)

	// ToggleUserLocked is restricted to owners of the actor's current tenant.
	ToggleUserLocked(ctx context.Context, actorID, targetID uuid.UUID) (*ToggleLockOutput, error)

	// ForgotPassword never reveals whether email belongs to an account.
	ForgotPassword(ctx context.Context, email string) error

	ResetPassword(ctx context.Context, input *ResetPasswordInput) error

	SendEmailVerification(ctx context.Context, email string) error

	VerifyEmail(ctx context.Context, email, token string) error
}
