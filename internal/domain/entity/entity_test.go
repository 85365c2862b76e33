package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUser_MinutesUntilUnlock_RoundsUp(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		until *time.Time
		want  int
	}{
		{name: "no lock", until: nil, want: 0},
		{name: "elapsed", until: ptr(now.Add(-time.Second)), want: 0},
		{name: "exact minutes", until: ptr(now.Add(5 * time.Minute)), want: 5},
		{name: "partial minute", until: ptr(now.Add(4*time.Minute + time.Millisecond)), want: 5},
		{name: "under a minute", until: ptr(now.Add(10 * time.Second)), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{TemporaryLockUntil: tt.until}
			assert.Equal(t, tt.want, u.MinutesUntilUnlock(now))
		})
	}
}

func TestUser_LockWindows(t *testing.T) {
	now := time.Now()
	u := &User{TemporaryLockUntil: ptr(now.Add(-time.Minute)), ForceLogoutAt: ptr(now.Add(time.Hour))}

	assert.False(t, u.IsTemporarilyLocked(now))
	assert.True(t, u.TemporaryLockElapsed(now))
	assert.True(t, u.IsForceLoggedOut(now))

	u.FailedLoginCounter = 4
	u.IsLocked = true
	u.ClearLoginFailures()
	assert.Zero(t, u.FailedLoginCounter)
	assert.Nil(t, u.TemporaryLockUntil)
	assert.True(t, u.IsLocked, "permanent lock survives a counter reset")
}

func TestMemberships(t *testing.T) {
	revokedAt := time.Now()
	active := &Tenant{ID: uuid.New(), IsActive: true}
	inactive := &Tenant{ID: uuid.New(), IsActive: false}
	revoked := &Tenant{ID: uuid.New(), IsActive: true, RevokedAt: &revokedAt}

	t.Run("no active membership", func(t *testing.T) {
		ms := Memberships{{TenantID: active.ID, IsActive: false, Tenant: active}}
		assert.False(t, ms.HasActive())
		assert.Nil(t, ms.FirstValid())
	})

	t.Run("only invalid tenants", func(t *testing.T) {
		ms := Memberships{
			{TenantID: inactive.ID, IsActive: true, Tenant: inactive},
			{TenantID: revoked.ID, IsActive: true, Tenant: revoked},
		}
		assert.True(t, ms.HasActive())
		assert.Nil(t, ms.FirstValid())
	})

	t.Run("one valid among invalid", func(t *testing.T) {
		ms := Memberships{
			{TenantID: revoked.ID, IsActive: true, Tenant: revoked},
			{TenantID: active.ID, IsActive: true, IsOwner: true, Tenant: active},
		}
		valid := ms.FirstValid()
		if assert.NotNil(t, valid) {
			assert.Equal(t, active.ID, valid.TenantID)
			assert.Equal(t, RoleOwner, valid.Role())
		}
		assert.Equal(t, revoked.ID, ms.ForTenant(revoked.ID).TenantID)
		assert.Nil(t, ms.ForTenant(uuid.New()))
	})
}

func TestMergeConfig(t *testing.T) {
	dark := "dark"
	merged := MergeConfig(DefaultUserConfig, []*ConfigEntry{
		{Key: "theme", Value: &dark},
		{Key: "language", Value: nil},
		{Key: "custom", Value: ptr("x")},
	})

	assert.Equal(t, "dark", merged["theme"])
	assert.Equal(t, "en", merged["language"])
	assert.Equal(t, "x", merged["custom"])
	assert.Equal(t, "light", DefaultUserConfig["theme"], "defaults are not mutated")

	assert.True(t, IsAllowedTenantConfigKey("vat"))
	assert.False(t, IsAllowedTenantConfigKey("theme"))
}

func ptr[T any](v T) *T {
	return &v
}
