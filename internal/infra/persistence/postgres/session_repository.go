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
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	m := fromSessionDomain(session)
	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateWriteError(err, "failed to create session")
	}

	session.ID = m.ID
	session.CreatedAt = m.CreatedAt

	return nil
}

func (repo *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var m model.SessionModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, domainDatabaseError(err, "failed to find session")
	}

	return toSessionDomain(&m), nil
}

// FindWithUser joins the owner in the same statement. The soft-delete scope of the join
// leaves User zero-valued when the owner is gone. The gate calls it outside a transaction,
// so the Write clause keeps a just-revoked session from being read off a lagging replica.
func (repo *sessionRepository) FindWithUser(ctx context.Context, id uuid.UUID) (*entity.SessionWithUser, error) {
	var m model.SessionModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Joins("User").
		Where("sessions.id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, domainDatabaseError(err, "failed to find session with user")
	}

	result := &entity.SessionWithUser{Session: toSessionDomain(&m)}
	if m.User != nil && m.User.ID != uuid.Nil {
		result.User = toUserDomain(m.User)
	}

	return result, nil
}

func (repo *sessionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	var models []model.SessionModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Read).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Order("last_activity DESC").
		Find(&models).Error
	if err != nil {
		return nil, domainDatabaseError(err, "failed to list sessions")
	}

	sessions := make([]*entity.Session, 0, len(models))
	for i := range models {
		sessions = append(sessions, toSessionDomain(&models[i]))
	}

	return sessions, nil
}

func (repo *sessionRepository) TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ?", id).
		Update("last_activity", at)
	if result.Error != nil {
		return domainDatabaseError(result.Error, "failed to touch session activity")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}

func (repo *sessionRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if result.Error != nil {
		return false, domainDatabaseError(result.Error, "failed to revoke session")
	}

	return result.RowsAffected > 0, nil
}

func (repo *sessionRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	var revoked []model.SessionModel
	err := repo.db.WithContext(ctx).
		Model(&revoked).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at).Error
	if err != nil {
		return nil, domainDatabaseError(err, "failed to revoke user sessions")
	}

	ids := make([]uuid.UUID, 0, len(revoked))
	for _, s := range revoked {
		ids = append(ids, s.ID)
	}

	return ids, nil
}
