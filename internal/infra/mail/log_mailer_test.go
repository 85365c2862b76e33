package mail

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMailer_NeverLogsTheToken(t *testing.T) {
	var buf bytes.Buffer
	mailer := NewLogMailer(slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx := context.Background()

	require.NoError(t, mailer.SendPasswordReset(ctx, "a@example.com", "Alice", "secret-reset-token"))
	require.NoError(t, mailer.SendEmailVerification(ctx, "a@example.com", "Alice", "secret-verify-token"))
	require.NoError(t, mailer.SendAccountLocked(ctx, "a@example.com", "Alice", time.Now().Add(24*time.Hour)))

	out := buf.String()
	assert.Contains(t, out, `"to":"a@example.com"`)
	assert.Contains(t, out, `"channel":"mail"`)
	assert.NotContains(t, out, "secret-reset-token")
	assert.NotContains(t, out, "secret-verify-token")
	assert.Contains(t, out, `"suspended_for":"2`)
}
