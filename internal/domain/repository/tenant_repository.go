package repository

import (
	"context"
	"errors"

	"sso/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrTenantNotFound is returned when a tenant does not exist.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrMembershipNotFound is returned when the user is not a member of the tenant.
	ErrMembershipNotFound = errors.New("membership not found")
)

// TenantRepository reads tenants and tenant memberships.
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error)

	// ListMemberships returns the user's memberships with their tenants preloaded.
	ListMemberships(ctx context.Context, userID uuid.UUID) (entity.Memberships, error)

	// FindMembership returns one membership with its tenant preloaded.
	FindMembership(ctx context.Context, userID, tenantID uuid.UUID) (*entity.Membership, error)
}
