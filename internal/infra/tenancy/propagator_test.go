package tenancy

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"sso/config"
	deliverycontext "sso/internal/delivery/context"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/domain/repository"
	"sso/internal/errors"
	"sso/internal/mocks/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPropagator(store *memstore.Store, policy string) *propagator {
	cfg := &config.Config{TenantContext: &config.TenantContextConfig{FailurePolicy: policy}}

	return NewPropagator(store, cfg, slog.New(slog.NewTextHandler(io.Discard, nil))).(*propagator)
}

func TestPropagate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("binds tenant to context", func(t *testing.T) {
		p := newPropagator(memstore.New(), config.TenantContextFailOpen)

		ctx, err := p.Propagate(context.Background(), &tenantID)
		require.NoError(t, err)

		bound, ok := deliverycontext.GetTenantID(ctx)
		assert.True(t, ok)
		assert.Equal(t, tenantID, bound)
	})

	t.Run("fail open tolerates missing tenant", func(t *testing.T) {
		p := newPropagator(memstore.New(), config.TenantContextFailOpen)

		ctx, err := p.Propagate(context.Background(), nil)
		require.NoError(t, err)

		_, ok := deliverycontext.GetTenantID(ctx)
		assert.False(t, ok)
	})

	t.Run("fail closed rejects missing tenant", func(t *testing.T) {
		p := newPropagator(memstore.New(), config.TenantContextFailClosed)

		_, err := p.Propagate(context.Background(), nil)
		assert.ErrorIs(t, err, domainerrors.ErrTenantContextUnavailable)
	})
}

func TestWithTenant_ScopesAndRestores(t *testing.T) {
	store := memstore.New()
	tenantA, tenantB := uuid.New(), uuid.New()
	store.SetTenantConfig(tenantA, "vat", "11")
	store.SetTenantConfig(tenantB, "vat", "7")
	p := newPropagator(store, config.TenantContextFailOpen)
	ctx := context.Background()

	err := p.WithTenant(ctx, tenantA, func(f repository.RepositoryFactory) error {
		own, err := f.NewConfigRepository().ListTenantConfig(ctx, tenantA)
		require.NoError(t, err)
		assert.Len(t, own, 1)

		other, err := f.NewConfigRepository().ListTenantConfig(ctx, tenantB)
		require.NoError(t, err)
		assert.Empty(t, other)

		tc := f.NewTenantContextRepository()
		require.NoError(t, tc.Set(ctx, tenantB))
		current, err := tc.Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, tenantB, *current)

		return nil
	})
	require.NoError(t, err)

	err = p.WithoutTenant(ctx, func(f repository.RepositoryFactory) error {
		current, err := f.NewTenantContextRepository().Current(ctx)
		require.NoError(t, err)
		assert.Nil(t, current)

		return nil
	})
	require.NoError(t, err)
}

func TestWithTenant_RestoresPreviousMarkerOnError(t *testing.T) {
	store := memstore.New()
	p := newPropagator(store, config.TenantContextFailOpen)
	ctx := context.Background()
	tenantID := uuid.New()
	boom := errors.New("boom")

	var observed repository.TenantContextRepository
	err := p.WithTenant(ctx, tenantID, func(f repository.RepositoryFactory) error {
		observed = f.NewTenantContextRepository()

		return boom
	})
	assert.ErrorIs(t, err, boom)

	current, err := observed.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current, "marker must be cleared after the scope ends")
}

func TestWithTenant_SetFailurePolicy(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("fail open runs fn without marker", func(t *testing.T) {
		store := memstore.New()
		store.SetTenantErr = errors.New("permission denied to set parameter")
		p := newPropagator(store, config.TenantContextFailOpen)

		ran := false
		err := p.WithTenant(ctx, tenantID, func(f repository.RepositoryFactory) error {
			ran = true
			current, err := f.NewTenantContextRepository().Current(ctx)
			require.NoError(t, err)
			assert.Nil(t, current)

			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("fail closed aborts before fn", func(t *testing.T) {
		store := memstore.New()
		store.SetTenantErr = errors.New("permission denied to set parameter")
		p := newPropagator(store, config.TenantContextFailClosed)

		ran := false
		err := p.WithTenant(ctx, tenantID, func(repository.RepositoryFactory) error {
			ran = true

			return nil
		})
		assert.ErrorIs(t, err, domainerrors.ErrTenantContextUnavailable)
		assert.False(t, ran)
	})
}

func TestExecute_UsesBoundTenant(t *testing.T) {
	store := memstore.New()
	tenantID := uuid.New()
	store.SetTenantConfig(tenantID, "timezone", "UTC")
	p := newPropagator(store, config.TenantContextFailOpen)

	ctx, err := p.Propagate(context.Background(), &tenantID)
	require.NoError(t, err)

	err = p.Execute(ctx, func(f repository.RepositoryFactory) error {
		entries, err := f.NewConfigRepository().ListTenantConfig(ctx, tenantID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		return nil
	})
	require.NoError(t, err)
}

func TestExecute_WithoutBoundTenant(t *testing.T) {
	ctx := context.Background()

	err := newPropagator(memstore.New(), config.TenantContextFailClosed).
		Execute(ctx, func(repository.RepositoryFactory) error { return nil })
	assert.ErrorIs(t, err, domainerrors.ErrTenantContextUnavailable)

	err = newPropagator(memstore.New(), config.TenantContextFailOpen).
		Execute(ctx, func(repository.RepositoryFactory) error { return nil })
	assert.NoError(t, err)
}

func TestVerifyIsolation(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("enforced", func(t *testing.T) {
		store := memstore.New()
		store.SetTenantConfig(tenantID, "vat", "11")

		report, err := newPropagator(store, config.TenantContextFailOpen).VerifyIsolation(ctx, tenantID)
		require.NoError(t, err)

		require.NotNil(t, report.ContextInside)
		assert.Equal(t, tenantID, *report.ContextInside)
		assert.Nil(t, report.ContextOutside)
		assert.Equal(t, 1, report.VisibleConfigRows)
		assert.Equal(t, 0, report.UnscopedConfigRows)
		assert.True(t, report.IsolationEnforced)
		assert.True(t, report.ContextRestoredToNull)
	})

	t.Run("not enforced without policy", func(t *testing.T) {
		store := memstore.New()
		store.RowLevelSecurity = false
		store.SetTenantConfig(tenantID, "vat", "11")

		report, err := newPropagator(store, config.TenantContextFailOpen).VerifyIsolation(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, 1, report.UnscopedConfigRows)
		assert.False(t, report.IsolationEnforced)
	})
}
