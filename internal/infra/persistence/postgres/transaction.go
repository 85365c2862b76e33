// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"sso/internal/domain/repository"
	"sso/internal/errors"

	"gorm.io/gorm"
)

type gormTransactionManager struct {
	db *gorm.DB
}

// gormRepositoryFactory hands out repositories bound to one transaction, and therefore to one
// pooled connection. Tenant markers set through it never outlive the transaction.
type gormRepositoryFactory struct {
	tx *gorm.DB
}

func (f *gormRepositoryFactory) NewUserRepository() repository.UserRepository {
	return NewUserRepository(f.tx)
}

func (f *gormRepositoryFactory) NewSessionRepository() repository.SessionRepository {
	return NewSessionRepository(f.tx)
}

func (f *gormRepositoryFactory) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return NewRefreshTokenRepository(f.tx)
}

func (f *gormRepositoryFactory) NewTenantRepository() repository.TenantRepository {
	return NewTenantRepository(f.tx)
}

func (f *gormRepositoryFactory) NewLoginAttemptRepository() repository.LoginAttemptRepository {
	return NewLoginAttemptRepository(f.tx)
}

func (f *gormRepositoryFactory) NewConfigRepository() repository.ConfigRepository {
	return NewConfigRepository(f.tx)
}

func (f *gormRepositoryFactory) NewEmailTokenRepository() repository.EmailTokenRepository {
	return NewEmailTokenRepository(f.tx)
}

func (f *gormRepositoryFactory) NewTenantContextRepository() repository.TenantContextRepository {
	return NewTenantContextRepository(f.tx)
}

// NewTransactionManager is the constructor for gormTransactionManager.
func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Execute runs the given function within a single database transaction.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "failed to begin transaction")
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&gormRepositoryFactory{tx: tx}); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return errors.Wrapf(err, "transaction rollback failed: %v", rbErr)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	return nil
}

// Read runs fn without opening a transaction. Each query checks out its own pooled connection,
// which lets dbresolver route it to a replica unless the repository pins it to the primary.
func (tm *gormTransactionManager) Read(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return fn(&gormRepositoryFactory{tx: tm.db.WithContext(ctx)})
}
