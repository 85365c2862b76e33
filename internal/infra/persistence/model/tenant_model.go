package model

import (
	"time"

	"github.com/google/uuid"
)

// TenantModel mirrors the 'tenants' table.
type TenantModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Code      string    `gorm:"type:varchar(50);unique;not null"`
	LogoPath  *string   `gorm:"type:varchar(255)"`
	IsActive  bool      `gorm:"not null;default:true"`
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (TenantModel) TableName() string {
	return "tenants"
}

// TenantHasUserModel mirrors the 'tenant_has_users' membership table.
type TenantHasUserModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	IsActive  bool      `gorm:"not null;default:true"`
	IsOwner   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time

	Tenant *TenantModel `gorm:"foreignKey:TenantID"`
}

// TableName explicitly sets the table name for GORM.
func (TenantHasUserModel) TableName() string {
	return "tenant_has_users"
}
