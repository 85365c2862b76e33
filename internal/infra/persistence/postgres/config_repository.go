package postgres

import (
	"context"
	"time"

	"sso/internal/domain/entity"
	"sso/internal/domain/repository"
	"sso/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository creates a new instance of ConfigRepository.
func NewConfigRepository(db *gorm.DB) repository.ConfigRepository {
	return &configRepository{db: db}
}

func (repo *configRepository) ListUserConfig(ctx context.Context, userID uuid.UUID) ([]*entity.ConfigEntry, error) {
	var models []model.UserConfigModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("config_key ASC").
		Find(&models).Error
	if err != nil {
		return nil, domainDatabaseError(err, "failed to list user config")
	}

	entries := make([]*entity.ConfigEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, &entity.ConfigEntry{
			ID:        m.ID,
			OwnerID:   m.UserID,
			Key:       m.ConfigKey,
			Value:     m.ConfigValue,
			UpdatedAt: m.UpdatedAt,
		})
	}

	return entries, nil
}

func (repo *configRepository) UpsertUserConfig(ctx context.Context, userID uuid.UUID, key string, value *string) error {
	now := time.Now()
	m := &model.UserConfigModel{
		UserID:      userID,
		ConfigKey:   key,
		ConfigValue: value,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "config_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"config_value", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return translateWriteError(err, "failed to upsert user config")
	}

	return nil
}

// ListTenantConfig returns only the rows the row-level security policy lets the connection see.
func (repo *configRepository) ListTenantConfig(ctx context.Context, tenantID uuid.UUID) ([]*entity.ConfigEntry, error) {
	var models []model.TenantConfigModel
	err := repo.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("config_key ASC").
		Find(&models).Error
	if err != nil {
		return nil, domainDatabaseError(err, "failed to list tenant config")
	}

	entries := make([]*entity.ConfigEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, &entity.ConfigEntry{
			ID:        m.ID,
			OwnerID:   m.TenantID,
			Key:       m.ConfigKey,
			Value:     m.ConfigValue,
			UpdatedAt: m.UpdatedAt,
		})
	}

	return entries, nil
}

func (repo *configRepository) UpsertTenantConfig(ctx context.Context, tenantID uuid.UUID, key string, value *string) error {
	now := time.Now()
	m := &model.TenantConfigModel{
		TenantID:    tenantID,
		ConfigKey:   key,
		ConfigValue: value,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "config_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"config_value", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return translateWriteError(err, "failed to upsert tenant config")
	}

	return nil
}
