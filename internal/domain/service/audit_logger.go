package service

import (
	"context"

	"github.com/google/uuid"
)

// AuditDescriptor names the audited table and event for a call site.
type AuditDescriptor struct {
	Table string
	Event string
}

// AuditEntry carries the per-call audit data.
type AuditEntry struct {
	UserType    string
	UserID      *uuid.UUID
	AuditableID string
	IPAddress   string
	UserAgent   string
	Payload     map[string]any
	Tags        []string
}

// AuditLogger is a write-only audit sink. Implementations must not fail the caller.
type AuditLogger interface {
	Log(ctx context.Context, descriptor AuditDescriptor, entry AuditEntry)
}
