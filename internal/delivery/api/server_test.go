package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sso/config"
	"sso/internal/delivery/api/middleware"
	"sso/internal/delivery/api/router"
	"sso/internal/delivery/api/router/handler"
	"sso/internal/domain/entity"
	"sso/internal/infra/audit"
	"sso/internal/infra/auth"
	"sso/internal/infra/cache"
	"sso/internal/infra/mail"
	"sso/internal/infra/pubsub"
	"sso/internal/infra/tenancy"
	"sso/internal/mocks/memstore"
	"sso/internal/usecase/impl"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct-horse-battery"

type apiFixture struct {
	echo  *echo.Echo
	store *memstore.Store
	user  *entity.User
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	cfg := &config.Config{Auth: &config.AuthConfig{
		BcryptCost:           bcrypt.MinCost,
		AccessTokenTTL:       time.Hour,
		RefreshTokenTTL:      24 * time.Hour,
		PasswordResetTTL:     time.Hour,
		EmailVerificationTTL: time.Hour,
	}}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"
	cfg.HTTP.MaxRequestBodySize = "100KB"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	security := impl.SecurityParams{
		TxManager: store,
		Hasher:    auth.NewBcryptHasher(cfg),
		Tokens:    tokens,
		Opaque:    auth.NewOpaqueTokenService(),
		Cache:     cache.NewRevocationCacheWithClient(client, logger),
		Publisher: pubsub.NewNoopPublisher(logger),
		Audit:     audit.NewSlogAuditLogger(logger),
		Mailer:    mail.NewLogMailer(logger),
		Config:    cfg,
		Logger:    logger,
	}
	propagator := tenancy.NewPropagator(store, cfg, logger)

	authUC := impl.NewAuthService(security)
	sessionUC := impl.NewSessionService(security)
	accountUC := impl.NewAccountService(security)
	configUC := impl.NewConfigService(impl.ConfigParams{
		TxManager:  store,
		Propagator: propagator,
		Audit:      security.Audit,
		Logger:     logger,
	})

	e := NewEcho(cfg, logger, router.RouterParams{
		AuthHandler: handler.NewAuthHandler(handler.AuthHandlerParams{
			AuthUC:    authUC,
			SessionUC: sessionUC,
			AccountUC: accountUC,
		}),
		SessionHandler: handler.NewSessionHandler(sessionUC),
		ConfigHandler:  handler.NewConfigHandler(configUC),
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.AuthMiddlewareParams{
			SessionUC:  sessionUC,
			Propagator: propagator,
			Logger:     logger,
		}),
	})

	hash, err := security.Hasher.Hash(testPassword)
	require.NoError(t, err)

	tenant := store.AddTenant(&entity.Tenant{Name: "Acme", Code: "acme", IsActive: true})
	user := store.AddUser(&entity.User{
		Name:         "Alice",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
	})
	store.AddMembership(user.ID, tenant.ID, true, false)

	return &apiFixture{echo: e, store: store, user: user}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) (int, *envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Safari/605.1.15")
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()

	f.echo.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return rec.Code, &env
}

func (f *apiFixture) login(t *testing.T) tokenPair {
	t.Helper()

	status, env := f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"usernameOrEmail": "alice",
		"password":        testPassword,
	})
	require.Equal(t, http.StatusOK, status)

	var pair tokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))

	return pair
}

func TestAPI_HealthCheck(t *testing.T) {
	f := newAPIFixture(t)

	status, env := f.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, env.Meta.RequestID)
}

func TestAPI_LoginAndSessionLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	pair := f.login(t)
	assert.Equal(t, "Bearer", pair.TokenType)

	status, env := f.do(t, http.MethodGet, "/auth/me", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Memberships []struct {
			IsCurrent bool `json:"isCurrent"`
		} `json:"memberships"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice", me.User.Username)
	require.Len(t, me.Memberships, 1)
	assert.True(t, me.Memberships[0].IsCurrent)

	status, env = f.do(t, http.MethodGet, "/auth/sessions", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	var sessions []struct {
		DeviceName string `json:"deviceName"`
		IsCurrent  bool   `json:"isCurrent"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sessions))
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].IsCurrent)
	assert.Equal(t, "Mac", sessions[0].DeviceName)

	status, env = f.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": pair.RefreshToken})
	require.Equal(t, http.StatusOK, status)
	var rotated tokenPair
	require.NoError(t, json.Unmarshal(env.Data, &rotated))
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	status, env = f.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "refresh_token_revoked", env.Error.Code)

	status, _ = f.do(t, http.MethodPost, "/auth/logout", rotated.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = f.do(t, http.MethodGet, "/auth/me", rotated.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "session_revoked", env.Error.Code)
}

func TestAPI_LogoutAllReportsTerminatedSessions(t *testing.T) {
	f := newAPIFixture(t)

	first := f.login(t)
	f.login(t)

	status, env := f.do(t, http.MethodPost, "/auth/logout-all", first.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)

	var out struct {
		SessionsTerminated int `json:"sessionsTerminated"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 2, out.SessionsTerminated)
	for _, sess := range f.store.Sessions(f.user.ID) {
		assert.True(t, sess.IsRevoked())
	}
}

func TestAPI_GateRejections(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name     string
		token    string
		wantCode string
	}{
		{name: "missing token", token: "", wantCode: "invalid_token"},
		{name: "garbage token", token: "not-a-jwt", wantCode: "invalid_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := f.do(t, http.MethodGet, "/auth/me", tt.token, nil)

			assert.Equal(t, http.StatusUnauthorized, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestAPI_LoginValidationAndCredentials(t *testing.T) {
	f := newAPIFixture(t)

	status, env := f.do(t, http.MethodPost, "/auth/login", "", map[string]any{"usernameOrEmail": "alice"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_failed", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), "password")

	status, env = f.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"usernameOrEmail": "alice",
		"password":        "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "temporary_locked_5min", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), "minutesRemaining")
}

func TestAPI_TenantConfig(t *testing.T) {
	f := newAPIFixture(t)
	pair := f.login(t)

	status, env := f.do(t, http.MethodPatch, "/tenants/config", pair.AccessToken, map[string]any{"vat": "12"})
	require.Equal(t, http.StatusOK, status)
	var cfg map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &cfg))
	assert.Equal(t, "12", cfg["vat"])

	status, env = f.do(t, http.MethodPatch, "/tenants/config", pair.AccessToken, map[string]any{"unknown_key": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_config_key", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), "unknown_key")

	status, env = f.do(t, http.MethodGet, "/tenants/rls/verify", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, env.Data)
}

func TestAPI_UserConfigRejectsEmptyPatch(t *testing.T) {
	f := newAPIFixture(t)
	pair := f.login(t)

	status, env := f.do(t, http.MethodPatch, "/auth/users/config", pair.AccessToken, map[string]any{})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_failed", env.Error.Code)
}
