package postgres

import (
	"context"

	"sso/internal/domain/entity"
	"sso/internal/domain/repository"
	"sso/internal/errors"
	"sso/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new instance of TenantRepository.
func NewTenantRepository(db *gorm.DB) repository.TenantRepository {
	return &tenantRepository{db: db}
}

func (repo *tenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	var m model.TenantModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTenantNotFound
		}

		return nil, domainDatabaseError(err, "failed to find tenant")
	}

	return toTenantDomain(&m), nil
}

func (repo *tenantRepository) ListMemberships(ctx context.Context, userID uuid.UUID) (entity.Memberships, error) {
	var models []model.TenantHasUserModel
	err := repo.db.WithContext(ctx).
		Preload("Tenant").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, domainDatabaseError(err, "failed to list tenant memberships")
	}

	memberships := make(entity.Memberships, 0, len(models))
	for i := range models {
		memberships = append(memberships, toMembershipDomain(&models[i]))
	}

	return memberships, nil
}

func (repo *tenantRepository) FindMembership(ctx context.Context, userID, tenantID uuid.UUID) (*entity.Membership, error) {
	var m model.TenantHasUserModel
	err := repo.db.WithContext(ctx).
		Preload("Tenant").
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMembershipNotFound
		}

		return nil, domainDatabaseError(err, "failed to find tenant membership")
	}

	return toMembershipDomain(&m), nil
}
