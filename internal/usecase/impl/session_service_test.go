package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"sso/internal/domain/entity"
	domainerrors "sso/internal/domain/errors"
	"sso/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_RotateRefreshToken(t *testing.T) {
	f := createSecurityFixtures(t)
	user, _ := f.seedMember(t, "alice")
	first := f.login(t, "alice")
	sessionID := f.sessionOf(t, first)

	rotated, err := f.sessions.RotateRefreshToken(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, sessionID, f.sessionOf(t, rotated), "rotation keeps the session")
	assert.Nil(t, rotated.User)

	tokens := f.store.RefreshTokens(user.ID)
	require.Len(t, tokens, 2)
	active := 0
	for _, token := range tokens {
		if !token.Revoked {
			active++
		}
	}
	assert.Equal(t, 1, active)

	_, err = f.sessions.RotateRefreshToken(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenRevoked)

	_, err = f.sessions.RotateRefreshToken(context.Background(), rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestSessionService_RotateRefreshToken_Rejections(t *testing.T) {
	f := createSecurityFixtures(t)
	user, _ := f.seedMember(t, "bob")
	now := time.Now()

	t.Run("unknown secret", func(t *testing.T) {
		_, err := f.sessions.RotateRefreshToken(context.Background(), "deadbeef")
		assert.ErrorIs(t, err, domainerrors.ErrInvalidRefreshToken)
	})

	t.Run("expired token is revoked before rejecting", func(t *testing.T) {
		session := f.store.AddSession(&entity.Session{UserID: user.ID, LastActivity: now, CreatedAt: now})
		raw, hash, err := f.opaque.Generate(refreshTokenBytes)
		require.NoError(t, err)
		token := f.store.AddRefreshToken(&entity.RefreshToken{
			UserID:    user.ID,
			SessionID: session.ID,
			TokenHash: hash,
			ExpiresAt: now.Add(-time.Minute),
		})

		_, err = f.sessions.RotateRefreshToken(context.Background(), raw)
		assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenExpired)

		for _, stored := range f.store.RefreshTokens(user.ID) {
			if stored.ID == token.ID {
				assert.True(t, stored.Revoked)
			}
		}
	})

	t.Run("revoked session terminates the token", func(t *testing.T) {
		session := f.store.AddSession(&entity.Session{UserID: user.ID, LastActivity: now, CreatedAt: now, RevokedAt: &now})
		raw, hash, err := f.opaque.Generate(refreshTokenBytes)
		require.NoError(t, err)
		f.store.AddRefreshToken(&entity.RefreshToken{
			UserID:    user.ID,
			SessionID: session.ID,
			TokenHash: hash,
			ExpiresAt: now.Add(time.Hour),
		})

		_, err = f.sessions.RotateRefreshToken(context.Background(), raw)
		assert.ErrorIs(t, err, domainerrors.ErrSessionTerminated)
	})
}

func TestSessionService_RotateRefreshToken_ConcurrentReuse(t *testing.T) {
	f := createSecurityFixtures(t)
	f.seedMember(t, "carol")
	output := f.login(t, "carol")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := f.sessions.RotateRefreshToken(context.Background(), output.RefreshToken)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenRevoked) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, rejected)
}

func TestSessionService_RevokeSession_Cascades(t *testing.T) {
	f := createSecurityFixtures(t)
	user, _ := f.seedMember(t, "dave")
	output := f.login(t, "dave")
	sessionID := f.sessionOf(t, output)

	require.NoError(t, f.sessions.RevokeSession(context.Background(), sessionID))

	assert.NotNil(t, f.store.Session(sessionID).RevokedAt)
	for _, token := range f.store.RefreshTokens(user.ID) {
		assert.True(t, token.Revoked)
	}
	assert.True(t, f.revocationCached(sessionID))

	_, err := f.sessions.RotateRefreshToken(context.Background(), output.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrRefreshTokenRevoked)
}

func TestSessionService_RevokeAllSessionsForUser(t *testing.T) {
	f := createSecurityFixtures(t)
	user, _ := f.seedMember(t, "erin")
	first := f.login(t, "erin")
	second := f.login(t, "erin")

	count, err := f.sessions.RevokeAllSessionsForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, output := range []string{first.AccessToken, second.AccessToken} {
		_, err := f.sessions.Authenticate(context.Background(), output)
		assert.ErrorIs(t, err, domainerrors.ErrSessionRevoked)
	}

	count, err = f.sessions.RevokeAllSessionsForUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSessionService_ListAndRevokeOwnSession(t *testing.T) {
	f := createSecurityFixtures(t)
	user, _ := f.seedMember(t, "frank")
	other, _ := f.seedMember(t, "gina")
	current := f.sessionOf(t, f.login(t, "frank"))
	otherDevice := f.sessionOf(t, f.login(t, "frank"))
	foreign := f.sessionOf(t, f.login(t, "gina"))

	views, err := f.sessions.ListSessions(context.Background(), user.ID, current)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, view := range views {
		assert.Equal(t, view.ID == current, view.IsCurrent)
	}

	err = f.sessions.RevokeOwnSession(context.Background(), user.ID, foreign)
	assert.ErrorIs(t, err, domainerrors.ErrManagedSessionNotFound)
	assert.Nil(t, f.store.Session(foreign).RevokedAt, "another user's session is untouched")

	err = f.sessions.RevokeOwnSession(context.Background(), user.ID, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrManagedSessionNotFound)

	require.NoError(t, f.sessions.RevokeOwnSession(context.Background(), user.ID, otherDevice))
	err = f.sessions.RevokeOwnSession(context.Background(), user.ID, otherDevice)
	assert.ErrorIs(t, err, domainerrors.ErrSessionAlreadyRevoked)

	views, err = f.sessions.ListSessions(context.Background(), user.ID, current)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].IsCurrent)

	otherViews, err := f.sessions.ListSessions(context.Background(), other.ID, foreign)
	require.NoError(t, err)
	assert.Len(t, otherViews, 1)
}

func TestSessionService_Authenticate_GateOrder(t *testing.T) {
	f := createSecurityFixtures(t)
	now := time.Now()

	tokenFor := func(t *testing.T, sessionID uuid.UUID) string {
		t.Helper()
		token, err := f.tokens.IssueAccessToken(sessionID)
		require.NoError(t, err)

		return token
	}

	sessionFor := func(t *testing.T, mutate func(*entity.User), revoked bool) uuid.UUID {
		t.Helper()
		user := f.seedUser(t, uuid.NewString()[:8])
		mutate(user)
		f.store.AddUser(user)
		session := &entity.Session{UserID: user.ID, LastActivity: now, CreatedAt: now}
		if revoked {
			session.RevokedAt = &now
		}

		return f.store.AddSession(session).ID
	}

	badFormat, err := jwt.NewWithClaims(jwt.SigningMethodHS256, service.AccessClaims{
		SessionID: "not-a-uuid",
		Type:      service.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(newTestConfig().SecretKey.Access))
	require.NoError(t, err)

	deletedSession := sessionFor(t, func(*entity.User) {}, false)
	deletedUser := f.store.Session(deletedSession).UserID
	f.store.DeleteUser(deletedUser)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "missing token", token: "", wantErr: domainerrors.ErrInvalidToken},
		{name: "garbage token", token: "not.a.jwt", wantErr: domainerrors.ErrInvalidToken},
		{name: "session claim is not a uuid", token: badFormat, wantErr: domainerrors.ErrInvalidTokenFormat},
		{name: "unknown session", token: tokenFor(t, uuid.New()), wantErr: domainerrors.ErrSessionNotFound},
		{
			name:    "revoked session",
			token:   tokenFor(t, sessionFor(t, func(*entity.User) {}, true)),
			wantErr: domainerrors.ErrSessionRevoked,
		},
		{name: "soft-deleted user", token: tokenFor(t, deletedSession), wantErr: domainerrors.ErrUserNotFound},
		{
			name: "locked account wins over force logout",
			token: tokenFor(t, sessionFor(t, func(u *entity.User) {
				u.IsLocked = true
				u.ForceLogoutAt = ptr(now.Add(time.Hour))
			}, false)),
			wantErr: domainerrors.ErrGateAccountLocked,
		},
		{
			name: "temporary lock",
			token: tokenFor(t, sessionFor(t, func(u *entity.User) {
				u.TemporaryLockUntil = ptr(now.Add(10 * time.Minute))
			}, false)),
			wantErr: domainerrors.ErrTemporaryLock,
		},
		{
			name: "force logout window",
			token: tokenFor(t, sessionFor(t, func(u *entity.User) {
				u.ForceLogoutAt = ptr(now.Add(time.Hour))
			}, false)),
			wantErr: domainerrors.ErrForceLogout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := f.sessions.Authenticate(context.Background(), tt.token)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("elapsed force logout passes", func(t *testing.T) {
		sessionID := sessionFor(t, func(u *entity.User) {
			u.ForceLogoutAt = ptr(now.Add(-time.Minute))
		}, false)

		identity, err := f.sessions.Authenticate(context.Background(), tokenFor(t, sessionID))
		require.NoError(t, err)
		assert.Equal(t, sessionID, identity.SessionID)
		assert.Nil(t, identity.TenantID)
	})
}

func TestSessionService_Authenticate_ResolvesOutsideTransaction(t *testing.T) {
	f := createSecurityFixtures(t)
	f.seedMember(t, "hana")
	sessionID := f.sessionOf(t, f.login(t, "hana"))

	token, err := f.tokens.IssueAccessToken(sessionID)
	require.NoError(t, err)

	transactions, reads := f.store.Transactions, f.store.Reads
	identity, err := f.sessions.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, identity.SessionID)

	assert.Equal(t, transactions, f.store.Transactions, "the gate opens no transaction")
	assert.Equal(t, reads+1, f.store.Reads)
}
