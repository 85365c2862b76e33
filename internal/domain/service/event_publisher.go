package service

import (
	"context"
	"time"
)

// Security event types.
const (
	EventAccountPermanentlyLocked = "account_permanently_locked"
	EventAccountLockToggled       = "account_lock_toggled"
	EventPasswordReset            = "password_reset"
	EventSessionsRevoked          = "sessions_revoked"
)

// SecurityEvent is published for downstream consumers (alerting, SIEM).
type SecurityEvent struct {
	RequestID  string         `json:"request_id,omitempty"`
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	UserID     string         `json:"user_id"`
	TenantID   string         `json:"tenant_id,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// SecurityEventPublisher defines the interface for publishing events to a message queue
type SecurityEventPublisher interface {
	// PublishSecurityEvent publishes a security event for async processing
	PublishSecurityEvent(ctx context.Context, event *SecurityEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
