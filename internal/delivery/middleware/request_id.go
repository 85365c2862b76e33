package middleware

import (
	"log/slog"

	deliverycontext "sso/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDMiddleware generates or extracts a unique Request ID for each request, creates a
// request-scoped logger and records the client's network metadata.
type RequestIDMiddleware struct {
	logger *slog.Logger
}

// NewRequestIDMiddleware creates a new Request ID middleware
func NewRequestIDMiddleware(logger *slog.Logger) *RequestIDMiddleware {
	return &RequestIDMiddleware{
		logger: logger,
	}
}

// Process handles the generation or extraction of the Request ID and creates a logger with requestID
func (m *RequestIDMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(deliverycontext.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Response().Header().Set(deliverycontext.HeaderXRequestID, requestID)

		// RealIP prefers the first X-Forwarded-For entry, then X-Real-IP, then the peer address.
		deliverycontext.Bind(c, deliverycontext.Request{
			ID:     requestID,
			Logger: m.logger.With(slog.String("request_id", requestID)),
			Client: deliverycontext.ClientInfo{
				IPAddress: c.RealIP(),
				UserAgent: c.Request().UserAgent(),
				URL:       c.Request().URL.RequestURI(),
			},
		})

		return next(c)
	}
}
