package postgres

import (
	"time"

	"sso/internal/domain/entity"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/infra/persistence/model"

	"gorm.io/datatypes"
)

func domainDatabaseError(err error, details string) error {
	return domainerrors.NewDatabaseExecuteError(err, details)
}

func toUserDomain(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}

	return &entity.User{
		ID:                 m.ID,
		Name:               m.Name,
		Username:           m.Username,
		Email:              m.Email,
		Phone:              m.Phone,
		PasswordHash:       m.Password,
		ProfilePhotoPath:   m.ProfilePhotoPath,
		EmailVerifiedAt:    m.EmailVerifiedAt,
		IsLocked:           m.IsLocked,
		LockedAt:           m.LockedAt,
		TemporaryLockUntil: m.TemporaryLockUntil,
		ForceLogoutAt:      m.ForceLogoutAt,
		FailedLoginCounter: m.FailedLoginCounter,
		LastTenantID:       m.LastTenantID,
		LastServiceKey:     m.LastServiceKey,
		LastLoginAt:        m.LastLoginAt,
		LastLoginIP:        m.LastLoginIP,
		RememberTokenHash:  m.RememberToken,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		DeletedAt:          deletedAt,
	}
}

func toSessionDomain(m *model.SessionModel) *entity.Session {
	if m == nil {
		return nil
	}

	payload := m.Payload.Data()

	return &entity.Session{
		ID:         m.ID,
		UserID:     m.UserID,
		IPAddress:  m.IPAddress,
		UserAgent:  m.UserAgent,
		DeviceName: m.DeviceName,
		Payload: entity.SessionPayload{
			LoginMethod: payload.LoginMethod,
			RememberMe:  payload.RememberMe,
			Latitude:    payload.Latitude,
			Longitude:   payload.Longitude,
		},
		LastActivity: m.LastActivity,
		CreatedAt:    m.CreatedAt,
		RevokedAt:    m.RevokedAt,
	}
}

func fromSessionDomain(s *entity.Session) *model.SessionModel {
	if s == nil {
		return nil
	}

	return &model.SessionModel{
		ID:         s.ID,
		UserID:     s.UserID,
		IPAddress:  s.IPAddress,
		UserAgent:  s.UserAgent,
		DeviceName: s.DeviceName,
		Payload: datatypes.NewJSONType(model.SessionPayload{
			LoginMethod: s.Payload.LoginMethod,
			RememberMe:  s.Payload.RememberMe,
			Latitude:    s.Payload.Latitude,
			Longitude:   s.Payload.Longitude,
		}),
		LastActivity: s.LastActivity,
		CreatedAt:    s.CreatedAt,
		RevokedAt:    s.RevokedAt,
	}
}

func toRefreshTokenDomain(m *model.RefreshTokenModel) *entity.RefreshToken {
	if m == nil {
		return nil
	}

	return &entity.RefreshToken{
		ID:        m.ID,
		UserID:    m.UserID,
		SessionID: m.SessionID,
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		Revoked:   m.Revoked,
		RevokedAt: m.RevokedAt,
		CreatedAt: m.CreatedAt,
	}
}

func fromRefreshTokenDomain(t *entity.RefreshToken) *model.RefreshTokenModel {
	if t == nil {
		return nil
	}

	return &model.RefreshTokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		SessionID: t.SessionID,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		Revoked:   t.Revoked,
		RevokedAt: t.RevokedAt,
		CreatedAt: t.CreatedAt,
	}
}

func toTenantDomain(m *model.TenantModel) *entity.Tenant {
	if m == nil {
		return nil
	}

	return &entity.Tenant{
		ID:        m.ID,
		Name:      m.Name,
		Code:      m.Code,
		LogoPath:  m.LogoPath,
		IsActive:  m.IsActive,
		RevokedAt: m.RevokedAt,
		CreatedAt: m.CreatedAt,
	}
}

func toMembershipDomain(m *model.TenantHasUserModel) *entity.Membership {
	if m == nil {
		return nil
	}

	return &entity.Membership{
		UserID:   m.UserID,
		TenantID: m.TenantID,
		IsActive: m.IsActive,
		IsOwner:  m.IsOwner,
		Tenant:   toTenantDomain(m.Tenant),
	}
}

func toEmailTokenDomain(m *model.EmailTokenModel) *entity.EmailToken {
	if m == nil {
		return nil
	}

	return &entity.EmailToken{
		Email:     m.Email,
		Purpose:   entity.EmailTokenPurpose(m.Purpose),
		TokenHash: m.TokenHash,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}
