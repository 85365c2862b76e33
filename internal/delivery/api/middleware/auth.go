// Package middleware contains the echo middleware specific to the JSON API.
package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "sso/internal/delivery/context"
	"sso/internal/domain/entity"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/domain/service"
	"sso/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const bearerPrefix = "Bearer "

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	SessionUC  usecase.SessionUsecase
	Propagator service.TenantContextPropagator
	Logger     *slog.Logger
}

// AuthMiddleware is the authentication gate in front of every protected route.
type AuthMiddleware struct {
	sessionUC  usecase.SessionUsecase
	propagator service.TenantContextPropagator
	logger     *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		sessionUC:  params.SessionUC,
		propagator: params.Propagator,
		logger:     params.Logger,
	}
}

// Authenticate resolves the bearer token to an identity and binds the caller's tenant to the request.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		identity, err := m.sessionUC.Authenticate(ctx, bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)))
		if err != nil {
			return err
		}

		ctx = deliverycontext.WithIdentity(ctx, identity)
		if logger := deliverycontext.GetLogger(ctx); logger != nil {
			ctx = deliverycontext.WithLogger(ctx, logger.With(
				slog.String("user_id", identity.UserID.String()),
				slog.String("session_id", identity.SessionID.String()),
			))
		}

		ctx, err = m.propagator.Propagate(ctx, identity.TenantID)
		if err != nil {
			return err
		}

		c.Set(string(deliverycontext.KeyIdentity), identity)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// bearerToken extracts the credential from an Authorization header. Anything else yields "".
func bearerToken(header string) string {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(header[len(bearerPrefix):])
}

// GetIdentity returns the identity attached by Authenticate.
func GetIdentity(c echo.Context) (*entity.Identity, error) {
	identity := deliverycontext.GetIdentityFromEcho(c)
	if identity == nil {
		return nil, domainerrors.ErrInvalidToken
	}

	return identity, nil
}
