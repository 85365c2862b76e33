package postgres

import (
	"context"
	"time"

	"sso/internal/domain/entity"
	"sso/internal/domain/repository"
	"sso/internal/errors"
	"sso/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates a new instance of RefreshTokenRepository.
func NewRefreshTokenRepository(db *gorm.DB) repository.RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (repo *refreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	m := fromRefreshTokenDomain(token)
	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateWriteError(err, "failed to create refresh token")
	}

	token.ID = m.ID
	token.CreatedAt = m.CreatedAt

	return nil
}

func (repo *refreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error) {
	var m model.RefreshTokenModel
	err := repo.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRefreshTokenNotFound
		}

		return nil, domainDatabaseError(err, "failed to find refresh token by hash")
	}

	return toRefreshTokenDomain(&m), nil
}

func (repo *refreshTokenRepository) RevokeIfActive(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	affected, err := repo.revoke(ctx, "failed to revoke refresh token", "id = ?", id, at)

	return affected == 1, err
}

func (repo *refreshTokenRepository) RevokeBySession(ctx context.Context, sessionID uuid.UUID, at time.Time) (int64, error) {
	return repo.revoke(ctx, "failed to revoke session refresh tokens", "session_id = ?", sessionID, at)
}

func (repo *refreshTokenRepository) RevokeByUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	return repo.revoke(ctx, "failed to revoke user refresh tokens", "user_id = ?", userID, at)
}

// revoke only touches rows that are still active, so concurrent callers race on the row lock
// and exactly one of them observes the transition.
func (repo *refreshTokenRepository) revoke(ctx context.Context, operation, query string, arg any, at time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.RefreshTokenModel{}).
		Where(query, arg).
		Where("revoked = ?", false).
		Updates(map[string]any{
			"revoked":    true,
			"revoked_at": at,
		})
	if result.Error != nil {
		return 0, domainDatabaseError(result.Error, operation)
	}

	return result.RowsAffected, nil
}
