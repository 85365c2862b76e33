package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	deliverycontext "sso/internal/delivery/context"
	"sso/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogAuditLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	auditLogger := NewSlogAuditLogger(logger)

	userID := uuid.New()
	ctx := deliverycontext.WithClientInfo(context.Background(), deliverycontext.ClientInfo{
		IPAddress: "10.0.0.1",
		UserAgent: "curl/8.0",
		URL:       "/auth/login",
	})
	ctx = deliverycontext.WithRequestID(ctx, "req-42")

	auditLogger.Log(ctx, service.AuditDescriptor{Table: "users", Event: "login_failed"}, service.AuditEntry{
		UserType:    "User",
		UserID:      &userID,
		AuditableID: userID.String(),
		Payload:     map[string]any{"reason": "invalid_credentials"},
		Tags:        []string{"login", "failed"},
	})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "audit", record["channel"])
	assert.Equal(t, "users", record["auditable_type"])
	assert.Equal(t, "login_failed", record["event"])
	assert.Equal(t, userID.String(), record["user_id"])
	assert.Equal(t, "10.0.0.1", record["ip_address"])
	assert.Equal(t, "curl/8.0", record["user_agent"])
	assert.Equal(t, "/auth/login", record["url"])
	assert.Equal(t, "req-42", record["request_id"])
	assert.Equal(t, map[string]any{"reason": "invalid_credentials"}, record["new_values"])
	assert.Equal(t, []any{"login", "failed"}, record["tags"])
}

func TestSlogAuditLogger_ExplicitClientWins(t *testing.T) {
	var buf bytes.Buffer
	auditLogger := NewSlogAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx := deliverycontext.WithClientInfo(context.Background(), deliverycontext.ClientInfo{IPAddress: "10.0.0.1"})
	auditLogger.Log(ctx, service.AuditDescriptor{Table: "sessions", Event: "revoked"}, service.AuditEntry{
		IPAddress: "192.168.1.9",
	})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "192.168.1.9", record["ip_address"])
	assert.NotContains(t, record, "user_id")
}
