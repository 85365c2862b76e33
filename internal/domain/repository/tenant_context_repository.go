package repository

import (
	"context"

	"github.com/google/uuid"
)

// TenantContextRepository manipulates the tenant marker that row-level security policies read.
// Implementations are bound to one connection, so the marker and the queries that depend on it
// always share that connection.
type TenantContextRepository interface {
	// Set establishes tenantID for the rest of the current transaction.
	Set(ctx context.Context, tenantID uuid.UUID) error

	// Current returns the marker visible to the connection, nil when unset.
	Current(ctx context.Context) (*uuid.UUID, error)

	// Clear removes the marker for the rest of the current transaction.
	Clear(ctx context.Context) error
}
