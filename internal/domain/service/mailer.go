package service

import (
	"context"
	"time"
)

// Mailer delivers account-security emails.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, token string) error
	SendEmailVerification(ctx context.Context, to, name, token string) error
	SendAccountLocked(ctx context.Context, to, name string, forceLogoutUntil time.Time) error
}
