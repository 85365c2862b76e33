package model

import (
	"time"

	"github.com/google/uuid"
)

// UserConfigModel mirrors the 'user_configs' table.
type UserConfigModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_configs_user_key"`
	ConfigKey   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_user_configs_user_key"`
	ConfigValue *string   `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserConfigModel) TableName() string {
	return "user_configs"
}

// TenantConfigModel mirrors the 'tenant_configs' table. Rows are filtered by a row-level security
// policy on tenant_id = current_setting('app.current_tenant_id').
type TenantConfigModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tenant_configs_tenant_key"`
	ConfigKey   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_tenant_configs_tenant_key"`
	ConfigValue *string   `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (TenantConfigModel) TableName() string {
	return "tenant_configs"
}
