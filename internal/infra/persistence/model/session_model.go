package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionPayload is the JSON document stored in sessions.payload.
type SessionPayload struct {
	LoginMethod string  `json:"login_method"`
	RememberMe  bool    `json:"remember_me,omitempty"`
	Latitude    *string `json:"latitude,omitempty"`
	Longitude   *string `json:"longitude,omitempty"`
}

// SessionModel mirrors the 'sessions' table.
type SessionModel struct {
	ID           uuid.UUID                          `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID       uuid.UUID                          `gorm:"type:uuid;not null;index"`
	IPAddress    string                             `gorm:"type:varchar(64)"`
	UserAgent    string                             `gorm:"type:text"`
	DeviceName   string                             `gorm:"type:varchar(100)"`
	Payload      datatypes.JSONType[SessionPayload] `gorm:"type:jsonb"`
	LastActivity time.Time                          `gorm:"not null;index"`
	CreatedAt    time.Time
	RevokedAt    *time.Time `gorm:"index"`

	User *UserModel `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// RefreshTokenModel mirrors the 'refresh_tokens' table. Only the SHA-256 digest is stored.
type RefreshTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:varchar(64);unique;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"not null;default:false"`
	RevokedAt *time.Time
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}

// FailedLoginAttemptModel mirrors the append-only 'failed_login_attempts' table.
type FailedLoginAttemptModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID          *uuid.UUID `gorm:"type:uuid;index"`
	UsernameOrEmail string     `gorm:"type:varchar(255)"`
	IPAddress       string     `gorm:"type:varchar(64)"`
	UserAgent       string     `gorm:"type:text"`
	AttemptedAt     time.Time  `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (FailedLoginAttemptModel) TableName() string {
	return "failed_login_attempts"
}

// EmailTokenModel mirrors the 'email_tokens' table, one row per email and purpose.
type EmailTokenModel struct {
	Email     string    `gorm:"type:varchar(255);primaryKey"`
	Purpose   string    `gorm:"type:varchar(50);primaryKey"`
	TokenHash string    `gorm:"type:varchar(64);not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (EmailTokenModel) TableName() string {
	return "email_tokens"
}
