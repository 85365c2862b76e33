// Package mail delivers account-security email. The log mailer writes messages to the
// structured log instead of an SMTP relay.
package mail

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "sso/internal/delivery/context"
	"sso/internal/domain/service"
	"sso/internal/util"
)

type logMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a Mailer that records each message in the log.
func NewLogMailer(logger *slog.Logger) service.Mailer {
	return &logMailer{logger: logger}
}

func (m *logMailer) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, m.logger).With(slog.String("channel", "mail"))
}

func (m *logMailer) SendPasswordReset(ctx context.Context, to, name, token string) error {
	m.log(ctx).InfoContext(ctx, "Password reset email queued",
		slog.String("to", to),
		slog.String("name", name),
		slog.Int("token_length", len(token)),
	)

	return nil
}

func (m *logMailer) SendEmailVerification(ctx context.Context, to, name, token string) error {
	m.log(ctx).InfoContext(ctx, "Email verification queued",
		slog.String("to", to),
		slog.String("name", name),
		slog.Int("token_length", len(token)),
	)

	return nil
}

func (m *logMailer) SendAccountLocked(ctx context.Context, to, name string, forceLogoutUntil time.Time) error {
	m.log(ctx).InfoContext(ctx, "Account locked notice queued",
		slog.String("to", to),
		slog.String("name", name),
		slog.Time("force_logout_until", forceLogoutUntil),
		slog.String("suspended_for", util.FormatDuration(time.Until(forceLogoutUntil))),
	)

	return nil
}
