package postgres

import (
	"context"

	"sso/internal/domain/entity"
	"sso/internal/domain/repository"
	"sso/internal/infra/persistence/model"

	"gorm.io/gorm"
)

type loginAttemptRepository struct {
	db *gorm.DB
}

// NewLoginAttemptRepository creates a new instance of LoginAttemptRepository.
func NewLoginAttemptRepository(db *gorm.DB) repository.LoginAttemptRepository {
	return &loginAttemptRepository{db: db}
}

func (repo *loginAttemptRepository) Record(ctx context.Context, attempt *entity.FailedLoginAttempt) error {
	m := &model.FailedLoginAttemptModel{
		UserID:          attempt.UserID,
		UsernameOrEmail: attempt.UsernameOrEmail,
		IPAddress:       attempt.IPAddress,
		UserAgent:       attempt.UserAgent,
		AttemptedAt:     attempt.AttemptedAt,
	}
	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateWriteError(err, "failed to record login attempt")
	}

	attempt.ID = m.ID

	return nil
}
