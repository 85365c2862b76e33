package postgres

import (
	"context"

	"sso/internal/domain/entity"
	"sso/internal/domain/repository"
	"sso/internal/errors"
	"sso/internal/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type emailTokenRepository struct {
	db *gorm.DB
}

// NewEmailTokenRepository creates a new instance of EmailTokenRepository.
func NewEmailTokenRepository(db *gorm.DB) repository.EmailTokenRepository {
	return &emailTokenRepository{db: db}
}

func (repo *emailTokenRepository) Upsert(ctx context.Context, token *entity.EmailToken) error {
	m := &model.EmailTokenModel{
		Email:     token.Email,
		Purpose:   string(token.Purpose),
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}, {Name: "purpose"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at", "created_at"}),
		}).
		Create(m).Error
	if err != nil {
		return translateWriteError(err, "failed to store email token")
	}

	return nil
}

func (repo *emailTokenRepository) Find(ctx context.Context, email string, purpose entity.EmailTokenPurpose) (*entity.EmailToken, error) {
	var m model.EmailTokenModel
	err := repo.db.WithContext(ctx).
		Where("email = ? AND purpose = ?", email, string(purpose)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEmailTokenNotFound
		}

		return nil, domainDatabaseError(err, "failed to find email token")
	}

	return toEmailTokenDomain(&m), nil
}

func (repo *emailTokenRepository) Delete(ctx context.Context, email string, purpose entity.EmailTokenPurpose) error {
	err := repo.db.WithContext(ctx).
		Where("email = ? AND purpose = ?", email, string(purpose)).
		Delete(&model.EmailTokenModel{}).Error
	if err != nil {
		return domainDatabaseError(err, "failed to delete email token")
	}

	return nil
}
