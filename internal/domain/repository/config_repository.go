package repository

import (
	"context"

	"sso/internal/domain/entity"

	"github.com/google/uuid"
)

// ConfigRepository persists per-user and per-tenant key/value configuration.
// Tenant rows are protected by row-level security and must be accessed inside a tenant context.
type ConfigRepository interface {
	ListUserConfig(ctx context.Context, userID uuid.UUID) ([]*entity.ConfigEntry, error)
	UpsertUserConfig(ctx context.Context, userID uuid.UUID, key string, value *string) error

	ListTenantConfig(ctx context.Context, tenantID uuid.UUID) ([]*entity.ConfigEntry, error)
	UpsertTenantConfig(ctx context.Context, tenantID uuid.UUID, key string, value *string) error
}
