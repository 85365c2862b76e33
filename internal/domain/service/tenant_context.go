package service

import (
	"context"

	"sso/internal/domain/repository"

	"github.com/google/uuid"
)

// IsolationReport describes what the store sees with and without a tenant marker.
type IsolationReport struct {
	TenantID              uuid.UUID  `json:"tenantId"`
	ContextInside         *uuid.UUID `json:"contextInside"`
	ContextOutside        *uuid.UUID `json:"contextOutside"`
	VisibleConfigRows     int        `json:"visibleConfigRows"`
	UnscopedConfigRows    int        `json:"unscopedConfigRows"`
	IsolationEnforced     bool       `json:"isolationEnforced"`
	ContextRestoredToNull bool       `json:"contextRestoredToNull"`
}

// TenantContextPropagator scopes store access to a tenant through a request-scoped handle
// instead of an ambient connection directive.
type TenantContextPropagator interface {
	// Propagate binds tenantID to the request context. Failures are logged and tolerated
	// under the fail-open policy and returned under fail-closed.
	Propagate(ctx context.Context, tenantID *uuid.UUID) (context.Context, error)

	// Execute runs fn in a transaction scoped to the tenant bound by Propagate.
	Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error

	// WithTenant runs fn in a transaction scoped to tenantID, restoring the previous marker afterwards.
	WithTenant(ctx context.Context, tenantID uuid.UUID, fn func(repository.RepositoryFactory) error) error

	// WithoutTenant runs fn in a transaction with the marker explicitly cleared.
	WithoutTenant(ctx context.Context, fn func(repository.RepositoryFactory) error) error

	// VerifyIsolation compares tenant-scoped visibility with and without a marker.
	VerifyIsolation(ctx context.Context, tenantID uuid.UUID) (*IsolationReport, error)
}
