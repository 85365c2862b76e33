package postgres

import (
	"context"

	"sso/internal/domain/repository"
	"sso/internal/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// tenantSetting is the session variable read by the row-level security policies.
	tenantSetting = "app.current_tenant_id"

	tenantContextSavePoint = "tenant_context"
)

type tenantContextRepository struct {
	db *gorm.DB
}

// NewTenantContextRepository creates a repository bound to the connection of db. The marker is
// written with is_local = true, so it vanishes at commit or rollback and never reaches the pool.
func NewTenantContextRepository(db *gorm.DB) repository.TenantContextRepository {
	return &tenantContextRepository{db: db}
}

func (repo *tenantContextRepository) Set(ctx context.Context, tenantID uuid.UUID) error {
	return repo.write(ctx, tenantID.String(), "failed to set tenant context")
}

func (repo *tenantContextRepository) Clear(ctx context.Context) error {
	return repo.write(ctx, "", "failed to clear tenant context")
}

func (repo *tenantContextRepository) Current(ctx context.Context) (*uuid.UUID, error) {
	var value *string
	err := repo.db.WithContext(ctx).
		Raw("SELECT current_setting(?, true)", tenantSetting).
		Scan(&value).Error
	if err != nil {
		return nil, domainDatabaseError(err, "failed to read tenant context")
	}
	if value == nil || *value == "" {
		return nil, nil
	}

	tenantID, err := uuid.Parse(*value)
	if err != nil {
		return nil, errors.Wrapf(err, "tenant context holds a malformed id %q", *value)
	}

	return &tenantID, nil
}

// write guards the statement with a savepoint so a failure leaves the surrounding
// transaction usable when the caller decides to continue.
func (repo *tenantContextRepository) write(ctx context.Context, value, operation string) error {
	db := repo.db.WithContext(ctx)
	if err := db.SavePoint(tenantContextSavePoint).Error; err != nil {
		return domainDatabaseError(err, operation)
	}

	if err := db.Exec("SELECT set_config(?, ?, true)", tenantSetting, value).Error; err != nil {
		if rbErr := db.RollbackTo(tenantContextSavePoint).Error; rbErr != nil {
			return domainDatabaseError(errors.Wrapf(err, "rollback to savepoint failed: %v", rbErr), operation)
		}

		return domainDatabaseError(err, operation)
	}

	return nil
}
