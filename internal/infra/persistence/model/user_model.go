package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
// gorm.DeletedAt makes every default query skip soft-deleted rows.
type UserModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Name               string    `gorm:"type:varchar(100)"`
	Username           string    `gorm:"type:varchar(100);unique;not null"`
	Email              string    `gorm:"type:varchar(255);unique;not null"`
	Phone              *string   `gorm:"type:varchar(50)"`
	Password           string    `gorm:"type:varchar(255);not null"`
	ProfilePhotoPath   *string   `gorm:"type:varchar(255)"`
	EmailVerifiedAt    *time.Time
	IsLocked           bool `gorm:"not null;default:false"`
	LockedAt           *time.Time
	TemporaryLockUntil *time.Time
	ForceLogoutAt      *time.Time
	FailedLoginCounter int        `gorm:"not null;default:0"`
	LastTenantID       *uuid.UUID `gorm:"type:uuid"`
	LastServiceKey     *string    `gorm:"type:varchar(100)"`
	LastLoginAt        *time.Time
	LastLoginIP        *string `gorm:"type:varchar(64)"`
	RememberToken      *string `gorm:"type:varchar(255)"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`

	Memberships []TenantHasUserModel `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
