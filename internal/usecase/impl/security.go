// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "sso/internal/delivery/context"
	"sso/internal/domain/service"

	"github.com/google/uuid"
)

const (
	// refreshTokenBytes is the size of the raw refresh secret before hex encoding.
	refreshTokenBytes = 64
	// emailTokenBytes is the size of password reset and verification secrets.
	emailTokenBytes = 32
	// rememberTokenBytes is the size of the remember-me secret.
	rememberTokenBytes = 30

	auditUserType = "User"
)

// Audit descriptors, one per audited event.
//
//nolint:gochecknoglobals
var (
	auditLoginFailed        = service.AuditDescriptor{Table: "users", Event: "login_failed"}
	auditLoginSucceeded     = service.AuditDescriptor{Table: "users", Event: "login"}
	auditAccountLocked      = service.AuditDescriptor{Table: "users", Event: "account_permanently_locked"}
	auditLockToggled        = service.AuditDescriptor{Table: "users", Event: "lock_toggled"}
	auditTenantSwitched     = service.AuditDescriptor{Table: "users", Event: "tenant_switched"}
	auditPasswordReset      = service.AuditDescriptor{Table: "users", Event: "password_reset"}
	auditEmailVerified      = service.AuditDescriptor{Table: "users", Event: "email_verified"}
	auditSessionRevoked     = service.AuditDescriptor{Table: "sessions", Event: "revoked"}
	auditSessionsRevokedAll = service.AuditDescriptor{Table: "sessions", Event: "revoked_all"}
	auditUserConfigUpdated  = service.AuditDescriptor{Table: "user_configs", Event: "updated"}
	auditTenantConfigUpdate = service.AuditDescriptor{Table: "tenant_configs", Event: "updated"}
)

// securityNotifier fans out post-commit side effects: the revocation cache and security events.
// Neither may fail the operation that triggered them.
type securityNotifier struct {
	cache     service.SessionRevocationCache
	publisher service.SecurityEventPublisher
	cacheTTL  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func (n *securityNotifier) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, n.logger)
}

// sessionsRevoked flags each session in the cache for as long as an access token may outlive it.
func (n *securityNotifier) sessionsRevoked(ctx context.Context, sessionIDs ...uuid.UUID) {
	if n.cache == nil {
		return
	}

	for _, id := range sessionIDs {
		if err := n.cache.MarkRevoked(ctx, id, n.cacheTTL); err != nil {
			n.log(ctx).Warn("Failed to cache session revocation",
				slog.String("session_id", id.String()),
				slog.Any("error", err),
			)
		}
	}
}

func (n *securityNotifier) publish(ctx context.Context, eventType string, userID uuid.UUID, tenantID, actorID *uuid.UUID, attributes map[string]any) {
	if n.publisher == nil {
		return
	}

	event := &service.SecurityEvent{
		RequestID:  deliverycontext.GetRequestIDFromContext(ctx),
		EventID:    uuid.NewString(),
		Type:       eventType,
		UserID:     userID.String(),
		Attributes: attributes,
		OccurredAt: n.now().UTC(),
	}
	if tenantID != nil {
		event.TenantID = tenantID.String()
	}
	if actorID != nil {
		event.ActorID = actorID.String()
	}

	if err := n.publisher.PublishSecurityEvent(ctx, event); err != nil {
		n.log(ctx).Error("Failed to publish security event",
			slog.String("event_type", eventType),
			slog.String("user_id", event.UserID),
			slog.Any("error", err),
		)
	}
}

// inferDeviceName labels a session from its user agent. iOS agents carry "like Mac OS X",
// and Android agents carry "Linux", so the mobile checks come first.
func inferDeviceName(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "iPhone"):
		return "iPhone"
	case strings.Contains(userAgent, "iPad"):
		return "iPad"
	case strings.Contains(userAgent, "Android"):
		return "Android Device"
	case strings.Contains(userAgent, "Windows"):
		return "Windows PC"
	case strings.Contains(userAgent, "Macintosh"), strings.Contains(userAgent, "Mac OS"):
		return "Mac"
	case strings.Contains(userAgent, "Linux"):
		return "Linux PC"
	default:
		return "Unknown Device"
	}
}

func auditEntryFor(userID *uuid.UUID, payload map[string]any, tags ...string) service.AuditEntry {
	entry := service.AuditEntry{
		UserType: auditUserType,
		UserID:   userID,
		Payload:  payload,
		Tags:     tags,
	}
	if userID != nil {
		entry.AuditableID = userID.String()
	}

	return entry
}
