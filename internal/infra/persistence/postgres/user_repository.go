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
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, "failed to find user by id", "id = ?", id)
}

// FindByIdentifier reads from the primary: a lock written moments ago must be visible to the next login.
func (repo *userRepository) FindByIdentifier(ctx context.Context, usernameOrEmail string) (*entity.User, error) {
	return repo.findOne(ctx, "failed to find user by identifier", "username = ? OR email = ?", usernameOrEmail, usernameOrEmail)
}

func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, "failed to find user by email", "email = ?", email)
}

func (repo *userRepository) findOne(ctx context.Context, operation string, query string, args ...any) (*entity.User, error) {
	var m model.UserModel
	err := repo.db.WithContext(ctx).
		Where(query, args...).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, domainDatabaseError(err, operation)
	}

	return toUserDomain(&m), nil
}

func (repo *userRepository) IncrementFailedLoginCounter(ctx context.Context, id uuid.UUID) (int, error) {
	var users []model.UserModel
	result := repo.db.WithContext(ctx).
		Model(&users).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "failed_login_counter"}}}).
		Where("id = ?", id).
		Updates(map[string]any{
			"failed_login_counter": gorm.Expr("failed_login_counter + 1"),
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return 0, domainDatabaseError(result.Error, "failed to increment failed login counter")
	}
	if result.RowsAffected == 0 || len(users) == 0 {
		return 0, repository.ErrUserNotFound
	}

	return users[0].FailedLoginCounter, nil
}

func (repo *userRepository) ResetLoginFailures(ctx context.Context, id uuid.UUID) error {
	return repo.update(ctx, id, "failed to reset login failures", map[string]any{
		"failed_login_counter": 0,
		"temporary_lock_until": nil,
	})
}

func (repo *userRepository) UpdateLockState(ctx context.Context, user *entity.User) error {
	return repo.update(ctx, user.ID, "failed to update lock state", map[string]any{
		"is_locked":            user.IsLocked,
		"locked_at":            user.LockedAt,
		"temporary_lock_until": user.TemporaryLockUntil,
		"force_logout_at":      user.ForceLogoutAt,
		"failed_login_counter": user.FailedLoginCounter,
	})
}

func (repo *userRepository) RecordSuccessfulLogin(ctx context.Context, user *entity.User) error {
	values := map[string]any{
		"failed_login_counter": 0,
		"temporary_lock_until": nil,
		"last_login_at":        user.LastLoginAt,
		"last_login_ip":        user.LastLoginIP,
		"last_tenant_id":       user.LastTenantID,
	}
	if user.RememberTokenHash != nil {
		values["remember_token"] = user.RememberTokenHash
	}

	return repo.update(ctx, user.ID, "failed to record successful login", values)
}

func (repo *userRepository) UpdateLastTenant(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return repo.update(ctx, id, "failed to update last tenant", map[string]any{
		"last_tenant_id": tenantID,
	})
}

func (repo *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return repo.update(ctx, id, "failed to update password", map[string]any{
		"password": passwordHash,
	})
}

func (repo *userRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return repo.update(ctx, id, "failed to mark email verified", map[string]any{
		"email_verified_at": at,
	})
}

// update writes only the given columns of a live user.
func (repo *userRepository) update(ctx context.Context, id uuid.UUID, operation string, values map[string]any) error {
	values["updated_at"] = time.Now()

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(values)
	if result.Error != nil {
		return translateWriteError(result.Error, operation)
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}
