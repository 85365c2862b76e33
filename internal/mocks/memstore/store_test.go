package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"sso/internal/domain/entity"
	"sso/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAbort = errors.New("abort")

func TestStore_Execute_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := s.AddUser(&entity.User{Username: "alice", Email: "alice@example.com"})
	tenantID := uuid.New()
	s.AddEmailToken(&entity.EmailToken{Email: user.Email, Purpose: entity.EmailTokenPasswordReset, TokenHash: "old"})
	existing := s.AddSession(&entity.Session{UserID: user.ID})

	var created uuid.UUID
	err := s.Execute(ctx, func(f repository.RepositoryFactory) error {
		session := &entity.Session{UserID: user.ID}
		require.NoError(t, f.NewSessionRepository().Create(ctx, session))
		created = session.ID

		_, err := f.NewUserRepository().IncrementFailedLoginCounter(ctx, user.ID)
		require.NoError(t, err)
		require.NoError(t, f.NewLoginAttemptRepository().Record(ctx, &entity.FailedLoginAttempt{UserID: &user.ID}))

		_, err = f.NewSessionRepository().Revoke(ctx, existing.ID, time.Now())
		require.NoError(t, err)

		require.NoError(t, f.NewEmailTokenRepository().Delete(ctx, user.Email, entity.EmailTokenPasswordReset))
		require.NoError(t, f.NewConfigRepository().UpsertUserConfig(ctx, user.ID, "theme", ptr("dark")))

		require.NoError(t, f.NewTenantContextRepository().Set(ctx, tenantID))
		require.NoError(t, f.NewConfigRepository().UpsertTenantConfig(ctx, tenantID, "vat", ptr("12")))

		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	assert.Nil(t, s.Session(created))
	assert.Nil(t, s.Session(existing.ID).RevokedAt)
	assert.Zero(t, s.User(user.ID).FailedLoginCounter)
	assert.Empty(t, s.LoginAttempts())
	require.NotNil(t, s.EmailToken(user.Email, entity.EmailTokenPasswordReset))
	assert.Equal(t, "old", s.EmailToken(user.Email, entity.EmailTokenPasswordReset).TokenHash)

	err = s.Execute(ctx, func(f repository.RepositoryFactory) error {
		entries, err := f.NewConfigRepository().ListUserConfig(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)

		require.NoError(t, f.NewTenantContextRepository().Set(ctx, tenantID))
		entries, err = f.NewConfigRepository().ListTenantConfig(ctx, tenantID)
		require.NoError(t, err)
		assert.Empty(t, entries)

		return nil
	})
	require.NoError(t, err)
}

func TestStore_Execute_CommitsOnSuccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := s.AddUser(&entity.User{Username: "bob", Email: "bob@example.com"})

	var created uuid.UUID
	err := s.Execute(ctx, func(f repository.RepositoryFactory) error {
		session := &entity.Session{UserID: user.ID}
		if err := f.NewSessionRepository().Create(ctx, session); err != nil {
			return err
		}
		created = session.ID

		_, err := f.NewUserRepository().IncrementFailedLoginCounter(ctx, user.ID)

		return err
	})
	require.NoError(t, err)

	assert.NotNil(t, s.Session(created))
	assert.Equal(t, 1, s.User(user.ID).FailedLoginCounter)

	// A later failing transaction reverts only its own writes.
	err = s.Execute(ctx, func(f repository.RepositoryFactory) error {
		_, err := f.NewUserRepository().IncrementFailedLoginCounter(ctx, user.ID)
		require.NoError(t, err)

		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	assert.Equal(t, 1, s.User(user.ID).FailedLoginCounter)
}

func ptr[T any](v T) *T {
	return &v
}
