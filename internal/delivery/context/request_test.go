package context

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoContext() echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)

	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestBind_SharesValuesWithRequestContext(t *testing.T) {
	c := newEchoContext()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	Bind(c, Request{
		ID:     "req-7",
		Logger: logger,
		Client: ClientInfo{IPAddress: "203.0.113.9", UserAgent: "curl/8.5.0"},
	})

	ctx := c.Request().Context()
	assert.Equal(t, "req-7", GetRequestID(c))
	assert.Equal(t, "req-7", GetRequestIDFromContext(ctx))
	assert.Same(t, logger, GetLogger(ctx))
	assert.Equal(t, "203.0.113.9", GetClientInfo(ctx).IPAddress)
}

func TestGetRequestID_FallbackIsStable(t *testing.T) {
	c := newEchoContext()

	first := GetRequestID(c)
	require.NotEmpty(t, first)
	assert.Equal(t, first, GetRequestID(c))
}

func TestGetLoggerOrDefault(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Same(t, fallback, GetLoggerOrDefault(newEchoContext().Request().Context(), fallback))
}
