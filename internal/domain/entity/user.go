// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record shared by every tenant the person belongs to.
type User struct {
	ID                 uuid.UUID  // Stable unique identifier.
	Name               string     // Display name.
	Username           string     // Login identifier, unique.
	Email              string     // Login identifier and contact address, unique.
	Phone              *string    // Optional contact number.
	PasswordHash       string     // bcrypt hash of the password.
	ProfilePhotoPath   *string    // Optional avatar path.
	EmailVerifiedAt    *time.Time // Set once the email verification flow completes.
	IsLocked           bool       // Permanent lock flag, cleared only by a tenant owner.
	LockedAt           *time.Time // When the permanent lock was applied.
	TemporaryLockUntil *time.Time // Progressive lockout expiry, lazily reset on next login.
	ForceLogoutAt      *time.Time // All sessions are suspended until this instant passes.
	FailedLoginCounter int        // Consecutive failed password checks.
	LastTenantID       *uuid.UUID // Tenant the user currently operates in.
	LastServiceKey     *string    // Last product surface the user opened.
	LastLoginAt        *time.Time // Last successful login.
	LastLoginIP        *string    // Client IP of the last successful login.
	RememberTokenHash  *string    // sha256 of the remember-me token, when requested.
	CreatedAt          time.Time  // Timestamp of when this user account was created.
	UpdatedAt          time.Time  // Timestamp of the last modification to this user's data.
	DeletedAt          *time.Time // Soft-delete marker; a deleted user is never authenticable.
}

// IsDeleted reports whether the user has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// IsTemporarilyLocked reports whether a progressive lock is still running at now.
func (u *User) IsTemporarilyLocked(now time.Time) bool {
	return u.TemporaryLockUntil != nil && u.TemporaryLockUntil.After(now)
}

// TemporaryLockElapsed reports whether a progressive lock exists but has already expired.
func (u *User) TemporaryLockElapsed(now time.Time) bool {
	return u.TemporaryLockUntil != nil && !u.TemporaryLockUntil.After(now)
}

// IsForceLoggedOut reports whether the force-logout window is still open at now.
func (u *User) IsForceLoggedOut(now time.Time) bool {
	return u.ForceLogoutAt != nil && u.ForceLogoutAt.After(now)
}

// MinutesUntilUnlock rounds the remaining temporary lock time up to whole minutes.
func (u *User) MinutesUntilUnlock(now time.Time) int {
	if !u.IsTemporarilyLocked(now) {
		return 0
	}

	remaining := u.TemporaryLockUntil.Sub(now)
	minutes := int(remaining / time.Minute)
	if remaining%time.Minute != 0 {
		minutes++
	}

	return minutes
}

// ClearLoginFailures resets the progressive lockout state. The permanent lock is untouched.
func (u *User) ClearLoginFailures() {
	u.FailedLoginCounter = 0
	u.TemporaryLockUntil = nil
}
