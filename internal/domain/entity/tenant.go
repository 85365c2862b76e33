package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an externally provisioned customer organisation.
type Tenant struct {
	ID        uuid.UUID  // Tenant identifier, also the row-level security marker value.
	Name      string     // Display name.
	Code      string     // Short unique code.
	LogoPath  *string    // Optional logo.
	IsActive  bool       // Inactive tenants block login for members with no other valid tenant.
	RevokedAt *time.Time // Revoked tenants behave like inactive ones.
	CreatedAt time.Time
}

// IsUsable reports whether the tenant may back a login or session.
func (t *Tenant) IsUsable() bool {
	return t != nil && t.IsActive && t.RevokedAt == nil
}

// Status returns a human readable tenant state.
func (t *Tenant) Status() string {
	switch {
	case t.RevokedAt != nil:
		return "revoked"
	case !t.IsActive:
		return "inactive"
	default:
		return "active"
	}
}

// Membership links a user to a tenant (the tenant_has_users relation).
type Membership struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	IsActive bool
	IsOwner  bool
	Tenant   *Tenant // Preloaded tenant, nil when not loaded.
}

// IsValid reports whether the membership is active and points at a usable tenant.
func (m *Membership) IsValid() bool {
	return m.IsActive && m.Tenant.IsUsable()
}

// Role returns the member's role inside the tenant.
func (m *Membership) Role() Role {
	if m.IsOwner {
		return RoleOwner
	}

	return RoleMember
}

// Memberships is a user's set of tenant memberships.
type Memberships []*Membership

// HasActive reports whether at least one membership is active.
func (ms Memberships) HasActive() bool {
	for _, m := range ms {
		if m.IsActive {
			return true
		}
	}

	return false
}

// FirstValid returns the first active membership on a usable tenant.
func (ms Memberships) FirstValid() *Membership {
	for _, m := range ms {
		if m.IsValid() {
			return m
		}
	}

	return nil
}

// ForTenant returns the membership for tenantID, if any.
func (ms Memberships) ForTenant(tenantID uuid.UUID) *Membership {
	for _, m := range ms {
		if m.TenantID == tenantID {
			return m
		}
	}

	return nil
}
