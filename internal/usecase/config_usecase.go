package usecase

import (
	"context"

	"sso/internal/domain/entity"
	"sso/internal/domain/service"

	"github.com/google/uuid"
)

// ConfigUsecase reads and writes user preferences and tenant settings.
// Tenant operations run inside the caller's tenant context.
type ConfigUsecase interface {
	GetUserConfig(ctx context.Context, userID uuid.UUID) (map[string]string, error)

	// UpdateUserConfig upserts each key; a nil value resets the key to its default.
	UpdateUserConfig(ctx context.Context, userID uuid.UUID, values map[string]*string) (map[string]string, error)

	GetTenantConfig(ctx context.Context, identity *entity.Identity) (map[string]string, error)

	UpdateTenantConfig(ctx context.Context, identity *entity.Identity, values map[string]*string) (map[string]string, error)

	// VerifyTenantIsolation reports what the store sees with and without the caller's tenant marker.
	VerifyTenantIsolation(ctx context.Context, identity *entity.Identity) (*service.IsolationReport, error)
}
