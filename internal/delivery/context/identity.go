package context

import (
	"context"

	"sso/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// KeyIdentity is the key for the authenticated caller.
	KeyIdentity ContextKey = "identity"

	// KeyTenantID is the key for the tenant bound to the request.
	KeyTenantID ContextKey = "tenant_id"

	// KeyClientInfo is the key for client network metadata.
	KeyClientInfo ContextKey = "client_info"
)

// ClientInfo is the caller's network metadata used for sessions and audit records.
type ClientInfo struct {
	IPAddress string
	UserAgent string
	URL       string
}

// WithIdentity returns a new context carrying the authenticated identity.
func WithIdentity(ctx context.Context, identity *entity.Identity) context.Context {
	return context.WithValue(ctx, KeyIdentity, identity)
}

// GetIdentity extracts the authenticated identity, nil for anonymous requests.
func GetIdentity(ctx context.Context) *entity.Identity {
	if identity, ok := ctx.Value(KeyIdentity).(*entity.Identity); ok {
		return identity
	}

	return nil
}

// GetIdentityFromEcho extracts the identity stored on the echo context by the auth middleware.
func GetIdentityFromEcho(c echo.Context) *entity.Identity {
	if identity, ok := c.Get(string(KeyIdentity)).(*entity.Identity); ok {
		return identity
	}

	return GetIdentity(c.Request().Context())
}

// WithTenantID returns a new context bound to tenantID.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, KeyTenantID, tenantID)
}

// GetTenantID returns the tenant bound to the request.
func GetTenantID(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(KeyTenantID).(uuid.UUID)

	return tenantID, ok
}

// WithClientInfo returns a new context carrying client metadata.
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, KeyClientInfo, info)
}

// GetClientInfo returns client metadata, zero-valued when absent.
func GetClientInfo(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(KeyClientInfo).(ClientInfo)

	return info
}
