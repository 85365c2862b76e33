package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"sso/config"
	"sso/internal/domain/entity"
	"sso/internal/domain/service"
	"sso/internal/infra/audit"
	"sso/internal/infra/auth"
	"sso/internal/infra/cache"
	"sso/internal/infra/mail"
	"sso/internal/infra/pubsub"
	"sso/internal/infra/tenancy"
	"sso/internal/mocks/memstore"
	"sso/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPassword  = "correct-horse-battery"
	testUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// securityFixtures wires every service against an in-memory store and a miniredis cache.
type securityFixtures struct {
	store      *memstore.Store
	redis      *miniredis.Miniredis
	hasher     service.PasswordHasher
	tokens     service.TokenService
	opaque     service.OpaqueTokenService
	propagator service.TenantContextPropagator

	auth     usecase.AuthUsecase
	sessions usecase.SessionUsecase
	accounts usecase.AccountUsecase
	configs  usecase.ConfigUsecase
}

func newTestConfig() *config.Config {
	cfg := &config.Config{Auth: &config.AuthConfig{
		BcryptCost:           bcrypt.MinCost,
		AccessTokenTTL:       time.Hour,
		RefreshTokenTTL:      7 * 24 * time.Hour,
		PasswordResetTTL:     time.Hour,
		EmailVerificationTTL: time.Hour,
	}}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"

	return cfg
}

func createSecurityFixtures(t *testing.T) *securityFixtures {
	t.Helper()

	cfg := newTestConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	params := SecurityParams{
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

	return &securityFixtures{
		store:      store,
		redis:      mr,
		hasher:     params.Hasher,
		tokens:     tokens,
		opaque:     params.Opaque,
		propagator: propagator,
		auth:       NewAuthService(params),
		sessions:   NewSessionService(params),
		accounts:   NewAccountService(params),
		configs: NewConfigService(ConfigParams{
			TxManager:  store,
			Propagator: propagator,
			Audit:      params.Audit,
			Logger:     logger,
		}),
	}
}

// seedMember adds an active tenant and a user with an active membership in it.
func (f *securityFixtures) seedMember(t *testing.T, username string) (*entity.User, *entity.Tenant) {
	t.Helper()

	tenant := f.store.AddTenant(&entity.Tenant{Name: "Acme " + username, Code: "acme-" + username, IsActive: true})
	user := f.seedUser(t, username)
	f.store.AddMembership(user.ID, tenant.ID, true, false)

	return user, tenant
}

func (f *securityFixtures) seedUser(t *testing.T, username string) *entity.User {
	t.Helper()

	hash, err := f.hasher.Hash(testPassword)
	require.NoError(t, err)

	return f.store.AddUser(&entity.User{
		Name:         "User " + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	})
}

func (f *securityFixtures) login(t *testing.T, identifier string) *usecase.AuthOutput {
	t.Helper()

	output, err := f.auth.Login(context.Background(), loginInput(identifier, testPassword))
	require.NoError(t, err)

	return output
}

func (f *securityFixtures) sessionOf(t *testing.T, output *usecase.AuthOutput) uuid.UUID {
	t.Helper()

	claims, err := f.tokens.ParseAccessToken(output.AccessToken)
	require.NoError(t, err)

	return uuid.MustParse(claims.SessionID)
}

func (f *securityFixtures) revocationCached(sessionID uuid.UUID) bool {
	return f.redis.Exists("sso:revoked-session:" + sessionID.String())
}

func loginInput(identifier, password string) *usecase.LoginInput {
	return &usecase.LoginInput{
		UsernameOrEmail: identifier,
		Password:        password,
		Device: entity.DeviceInfo{
			IPAddress: "203.0.113.7",
			UserAgent: testUserAgent,
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}
