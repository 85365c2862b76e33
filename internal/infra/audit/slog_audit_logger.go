// Package audit writes audit trail records through a dedicated slog channel.
package audit

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "sso/internal/delivery/context"
	"sso/internal/domain/service"
)

const channel = "audit"

type slogAuditLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewSlogAuditLogger creates an AuditLogger that emits one structured record per entry.
func NewSlogAuditLogger(logger *slog.Logger) service.AuditLogger {
	return &slogAuditLogger{
		logger: logger.With(slog.String("channel", channel)),
		now:    time.Now,
	}
}

// Log never fails: an audit record that cannot be built is still emitted with what is known.
func (a *slogAuditLogger) Log(ctx context.Context, descriptor service.AuditDescriptor, entry service.AuditEntry) {
	client := deliverycontext.GetClientInfo(ctx)
	if entry.IPAddress == "" {
		entry.IPAddress = client.IPAddress
	}
	if entry.UserAgent == "" {
		entry.UserAgent = client.UserAgent
	}

	attrs := []slog.Attr{
		slog.String("auditable_type", descriptor.Table),
		slog.String("event", descriptor.Event),
		slog.String("auditable_id", entry.AuditableID),
		slog.String("user_type", entry.UserType),
		slog.String("ip_address", entry.IPAddress),
		slog.String("user_agent", entry.UserAgent),
		slog.String("url", client.URL),
		slog.Time("created_at", a.now()),
	}
	if entry.UserID != nil {
		attrs = append(attrs, slog.String("user_id", entry.UserID.String()))
	}
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	if len(entry.Payload) > 0 {
		attrs = append(attrs, slog.Any("new_values", entry.Payload))
	}
	if len(entry.Tags) > 0 {
		attrs = append(attrs, slog.Any("tags", entry.Tags))
	}

	a.logger.LogAttrs(ctx, slog.LevelInfo, "Audit", attrs...)
}
