// Package context carries request-scoped values between the echo middleware chain and the
// usecase layer: request id, logger, client metadata, identity and tenant.
package context

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	KeyRequestID ContextKey = "request_id"
	KeyLogger    ContextKey = "logger"

	HeaderXRequestID = echo.HeaderXRequestID
)

// Request is what the request-id middleware binds to every inbound request.
type Request struct {
	ID     string
	Logger *slog.Logger
	Client ClientInfo
}

// Bind stores req on the echo context and on the request's context.Context, so handlers,
// usecases and audit records all see the same request id.
func Bind(c echo.Context, req Request) {
	c.Set(string(KeyRequestID), req.ID)

	ctx := WithRequestID(c.Request().Context(), req.ID)
	if req.Logger != nil {
		ctx = WithLogger(ctx, req.Logger)
	}
	ctx = WithClientInfo(ctx, req.Client)
	c.SetRequest(c.Request().WithContext(ctx))
}

// GetRequestID returns the id bound to the request. Responses written before the middleware
// ran (a recovered panic, a router 404) get a fresh id that sticks for the rest of the request.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(string(KeyRequestID)).(string); ok && id != "" {
		return id
	}
	if id := GetRequestIDFromContext(c.Request().Context()); id != "" {
		return id
	}

	id := uuid.New().String()
	c.Set(string(KeyRequestID), id)

	return id
}

func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)

	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// GetLogger returns the request-scoped logger, nil outside a request.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(KeyLogger).(*slog.Logger)

	return logger
}

// GetLoggerOrDefault is GetLogger with a fallback for background work such as post-commit
// side effects that run without a request.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := GetLogger(ctx); logger != nil {
		return logger
	}

	return fallback
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}
