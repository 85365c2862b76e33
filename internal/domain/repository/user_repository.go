// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"sso/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when no live (non-deleted) user matches.
var ErrUserNotFound = errors.New("user not found")

// UserRepository persists users. Every finder excludes soft-deleted rows.
// Writes are column-targeted so concurrent requests never overwrite each other's fields.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByIdentifier matches either the username or the email.
	FindByIdentifier(ctx context.Context, usernameOrEmail string) (*entity.User, error)

	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// IncrementFailedLoginCounter atomically increments the counter and returns the new value.
	IncrementFailedLoginCounter(ctx context.Context, id uuid.UUID) (int, error)

	// ResetLoginFailures zeroes the counter and clears the temporary lock.
	ResetLoginFailures(ctx context.Context, id uuid.UUID) error

	// UpdateLockState writes is_locked, locked_at, temporary_lock_until and force_logout_at.
	UpdateLockState(ctx context.Context, user *entity.User) error

	// RecordSuccessfulLogin clears failures and stores last login data, last tenant and remember token.
	RecordSuccessfulLogin(ctx context.Context, user *entity.User) error

	UpdateLastTenant(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error
}
