package errors

import (
	"net/http"

	"sso/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Machine-readable reason, e.g. "invalid_credentials"
	Message() string   // User-friendly error message
	Details() any      // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   any
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message string, details any) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.errorCode == "" {
		return e.message
	}

	return e.errorCode + ": " + e.message
}

// Is matches errors sharing the same status and reason, so values returned by
// WithDetails still compare equal to their predeclared origin.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.httpCode == t.httpCode && e.errorCode == t.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the reason code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() any {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details any) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// LockDetails carries remediation timing for policy failures.
type LockDetails struct {
	MinutesRemaining int    `json:"minutesRemaining,omitempty"`
	LockedUntil      string `json:"lockedUntil,omitempty"`
	FailedAttempts   int    `json:"failedAttempts,omitempty"`
}

func newAuthError(reason, message string) *BaseError {
	return NewBaseError(http.StatusUnauthorized, reason, message, nil)
}

// Login and account-state failures.
var (
	ErrInvalidCredentials       = newAuthError("invalid_credentials", "Invalid username/email or password")
	ErrAccountLocked            = newAuthError("account_locked", "Account is locked, contact your tenant owner")
	ErrTemporaryLocked          = newAuthError("temporary_locked", "Account is temporarily locked")
	ErrTemporaryLocked5Min      = newAuthError("temporary_locked_5min", "Too many failed attempts, account locked for 5 minutes")
	ErrTemporaryLocked15Min     = newAuthError("temporary_locked_15min", "Too many failed attempts, account locked for 15 minutes")
	ErrAccountPermanentlyLocked = newAuthError("account_permanently_locked", "Too many failed attempts, account permanently locked")
	ErrNoActiveTenant           = newAuthError("no_active_tenant", "User has no active tenant membership")
	ErrTenantInactiveOrRevoked  = newAuthError("tenant_inactive_or_revoked", "All tenants of this user are inactive or revoked")
	ErrAccountSuspended         = newAuthError("account_suspended", "Account is suspended due to a security event")
)

// Refresh token failures.
var (
	ErrInvalidRefreshToken = newAuthError("invalid_refresh_token", "Invalid refresh token")
	ErrRefreshTokenRevoked = newAuthError("refresh_token_revoked", "Refresh token has been revoked")
	ErrRefreshTokenExpired = newAuthError("refresh_token_expired", "Refresh token has expired")
	ErrSessionTerminated   = newAuthError("session_terminated", "Session has been terminated")
)

// Authentication gate failures, in evaluation order. A missing bearer token is an invalid token.
var (
	ErrInvalidToken       = newAuthError("invalid_token", "Invalid or expired token")
	ErrInvalidTokenFormat = newAuthError("invalid_token_format", "Token does not reference a session")
	ErrSessionNotFound    = newAuthError("session_not_found", "Session not found")
	ErrSessionRevoked     = newAuthError("session_revoked", "Session has been revoked")
	ErrUserNotFound       = newAuthError("user_not_found", "User not found")
	ErrGateAccountLocked  = newAuthError("account_locked", "Account is locked")
	ErrTemporaryLock      = newAuthError("temporary_lock", "Account is temporarily locked")
	ErrForceLogout        = newAuthError("force_logout", "Session suspended by a security event")
)

// Authorization failures.
var (
	ErrOwnerPermissionRequired = NewBaseError(
		http.StatusForbidden,
		"owner_permission_required",
		"Only the tenant owner can perform this action",
		nil,
	)

	ErrAccessDenied = NewBaseError(
		http.StatusForbidden,
		"access_denied",
		"You are not a member of this tenant",
		nil,
	)

	ErrMembershipInactive = NewBaseError(
		http.StatusForbidden,
		"membership_inactive",
		"Your membership in this tenant is inactive",
		nil,
	)

	ErrTenantAccessDenied = NewBaseError(
		http.StatusForbidden,
		"tenant_access_denied",
		"No active access to the current tenant",
		nil,
	)

	ErrTenantSwitchUnavailable = NewBaseError(
		http.StatusForbidden,
		"tenant_inactive_or_revoked",
		"Tenant is inactive or revoked",
		nil,
	)

	ErrTenantContextUnavailable = NewBaseError(
		http.StatusForbidden,
		"tenant_context_unavailable",
		"Tenant context could not be established",
		nil,
	)
)

// Account management failures.
var (
	ErrUserNotInTenant = NewBaseError(
		http.StatusNotFound,
		"user_not_in_tenant",
		"Target user is not a member of your current tenant",
		nil,
	)

	ErrCannotLockSelf = NewBaseError(
		http.StatusBadRequest,
		"cannot_lock_self",
		"You cannot lock your own account",
		nil,
	)

	ErrManagedSessionNotFound = NewBaseError(
		http.StatusNotFound,
		"session_not_found",
		"Session not found",
		nil,
	)

	ErrSessionAlreadyRevoked = NewBaseError(
		http.StatusBadRequest,
		"session_already_revoked",
		"Session is already revoked",
		nil,
	)
)

// Password reset and email verification failures.
var (
	ErrPasswordMismatch = NewBaseError(
		http.StatusBadRequest,
		"password_mismatch",
		"Passwords do not match",
		nil,
	)

	ErrInvalidResetToken = NewBaseError(
		http.StatusBadRequest,
		"invalid_reset_token",
		"Invalid or expired reset token",
		nil,
	)

	ErrResetTokenExpired = NewBaseError(
		http.StatusBadRequest,
		"reset_token_expired",
		"Reset token has expired",
		nil,
	)

	ErrResetUserNotFound = NewBaseError(
		http.StatusBadRequest,
		"user_not_found",
		"User not found",
		nil,
	)

	ErrEmailNotFound = NewBaseError(
		http.StatusBadRequest,
		"email_not_found",
		"Email not found",
		nil,
	)

	ErrEmailAlreadyVerified = NewBaseError(
		http.StatusBadRequest,
		"email_already_verified",
		"Email already verified",
		nil,
	)

	ErrInvalidVerificationToken = NewBaseError(
		http.StatusBadRequest,
		"invalid_verification_token",
		"Invalid verification token",
		nil,
	)

	ErrVerificationTokenExpired = NewBaseError(
		http.StatusBadRequest,
		"verification_token_expired",
		"Verification token has expired",
		nil,
	)
)

// General errors.
var (
	ErrInvalidConfigKey = NewBaseError(
		http.StatusBadRequest,
		"invalid_config_key",
		"Configuration key is not allowed",
		nil,
	)

	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"validation_failed",
		"Input validation failed",
		nil,
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"not_found",
		"Resource not found",
		nil,
	)

	// ErrInternalError deliberately carries no reason code.
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"",
		"Operation failed",
		nil,
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode is empty: internal failures never expose a reason.
func (e *DatabaseExecuteError) ErrorCode() string {
	return ""
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Operation failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() any {
	return e.details
}
