package impl

import (
	"context"
	"testing"

	"sso/internal/domain/entity"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigService_UserConfig(t *testing.T) {
	f := createSecurityFixtures(t)
	user := f.seedUser(t, "alice")
	ctx := context.Background()

	cfg, err := f.configs.GetUserConfig(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultUserConfig, cfg)

	cfg, err = f.configs.UpdateUserConfig(ctx, user.ID, map[string]*string{
		"theme":        ptr("dark"),
		"custom-panel": ptr("collapsed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg["theme"])
	assert.Equal(t, "collapsed", cfg["custom-panel"])
	assert.Equal(t, "20", cfg["items_per_page"])

	cfg, err = f.configs.UpdateUserConfig(ctx, user.ID, map[string]*string{"theme": nil})
	require.NoError(t, err)
	assert.Equal(t, "light", cfg["theme"], "a nil value falls back to the default")
}

func TestConfigService_TenantConfig(t *testing.T) {
	f := createSecurityFixtures(t)
	user, tenant := f.seedMember(t, "bob")
	identity := &entity.Identity{UserID: user.ID, SessionID: uuid.New(), TenantID: &tenant.ID}

	ctx, err := f.propagator.Propagate(context.Background(), identity.TenantID)
	require.NoError(t, err)

	cfg, err := f.configs.GetTenantConfig(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultTenantConfig, cfg)

	cfg, err = f.configs.UpdateTenantConfig(ctx, identity, map[string]*string{
		"vat":      ptr("12"),
		"timezone": ptr("WITA"),
	})
	require.NoError(t, err)
	assert.Equal(t, "12", cfg["vat"])
	assert.Equal(t, "WITA", cfg["timezone"])
	assert.Equal(t, "IDR", cfg["main_currency"])

	cfg, err = f.configs.GetTenantConfig(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "12", cfg["vat"])
}

func TestConfigService_TenantConfig_Rejections(t *testing.T) {
	f := createSecurityFixtures(t)
	user, tenant := f.seedMember(t, "carol")
	stranger := f.store.AddTenant(&entity.Tenant{Name: "Other", Code: "other", IsActive: true})
	inactive := f.store.AddTenant(&entity.Tenant{Name: "Inactive", Code: "inactive", IsActive: false})
	f.store.AddMembership(user.ID, inactive.ID, true, false)

	bound := func(t *testing.T, tenantID uuid.UUID) (context.Context, *entity.Identity) {
		t.Helper()
		ctx, err := f.propagator.Propagate(context.Background(), &tenantID)
		require.NoError(t, err)

		return ctx, &entity.Identity{UserID: user.ID, TenantID: &tenantID}
	}

	t.Run("no current tenant", func(t *testing.T) {
		_, err := f.configs.GetTenantConfig(context.Background(), &entity.Identity{UserID: user.ID})
		assert.ErrorIs(t, err, domainerrors.ErrTenantAccessDenied)
	})

	t.Run("not a member", func(t *testing.T) {
		ctx, identity := bound(t, stranger.ID)
		_, err := f.configs.GetTenantConfig(ctx, identity)
		assert.ErrorIs(t, err, domainerrors.ErrTenantAccessDenied)
	})

	t.Run("tenant not usable", func(t *testing.T) {
		ctx, identity := bound(t, inactive.ID)
		_, err := f.configs.UpdateTenantConfig(ctx, identity, map[string]*string{"vat": ptr("5")})
		assert.ErrorIs(t, err, domainerrors.ErrTenantAccessDenied)
	})

	t.Run("unknown key", func(t *testing.T) {
		ctx, identity := bound(t, tenant.ID)
		_, err := f.configs.UpdateTenantConfig(ctx, identity, map[string]*string{
			"vat":         ptr("5"),
			"secret_flag": ptr("on"),
		})
		require.ErrorIs(t, err, domainerrors.ErrInvalidConfigKey)

		var appErr domainerrors.AppError
		require.True(t, errors.As(err, &appErr))
		details, ok := appErr.Details().(map[string]any)
		require.True(t, ok)
		assert.Equal(t, []string{"secret_flag"}, details["invalidKeys"])

		cfg, err := f.configs.GetTenantConfig(ctx, identity)
		require.NoError(t, err)
		assert.Equal(t, "11", cfg["vat"], "nothing is written when any key is rejected")
	})
}

func TestConfigService_VerifyTenantIsolation(t *testing.T) {
	f := createSecurityFixtures(t)
	user, tenant := f.seedMember(t, "dave")
	f.store.SetTenantConfig(tenant.ID, "vat", "12")
	f.store.SetTenantConfig(tenant.ID, "timezone", "WIT")

	_, err := f.configs.VerifyTenantIsolation(context.Background(), &entity.Identity{UserID: user.ID})
	assert.ErrorIs(t, err, domainerrors.ErrTenantAccessDenied)

	report, err := f.configs.VerifyTenantIsolation(context.Background(), &entity.Identity{UserID: user.ID, TenantID: &tenant.ID})
	require.NoError(t, err)
	require.NotNil(t, report.ContextInside)
	assert.Equal(t, tenant.ID, *report.ContextInside)
	assert.Nil(t, report.ContextOutside)
	assert.Equal(t, 2, report.VisibleConfigRows)
	assert.Zero(t, report.UnscopedConfigRows)
	assert.True(t, report.IsolationEnforced)
	assert.True(t, report.ContextRestoredToNull)
}
