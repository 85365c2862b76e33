// Package memstore is an in-memory implementation of the repository interfaces for tests.
// Each repository call is atomic. Execute journals every write and reverts them when fn
// returns an error; rows are restored whole, so there is no row-level isolation between
// concurrent transactions that write the same row.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"sso/internal/domain/entity"
	"sso/internal/domain/repository"

	"github.com/google/uuid"
)

// Store holds every table in memory. Seed it through the exported helpers before use.
type Store struct {
	mu sync.Mutex

	users         map[uuid.UUID]*entity.User
	sessions      map[uuid.UUID]*entity.Session
	refreshTokens map[uuid.UUID]*entity.RefreshToken
	tenants       map[uuid.UUID]*entity.Tenant
	memberships   []*entity.Membership
	loginAttempts []*entity.FailedLoginAttempt
	userConfig    map[uuid.UUID]map[string]*string
	tenantConfig  map[uuid.UUID]map[string]*string
	emailTokens   map[string]*entity.EmailToken

	// RowLevelSecurity hides tenant configuration rows that do not match the transaction's marker.
	RowLevelSecurity bool

	// SetTenantErr, when non-nil, is returned by every TenantContextRepository.Set call.
	SetTenantErr error

	// Transactions counts Execute calls.
	Transactions int

	// Reads counts Read calls.
	Reads int
}

// New returns an empty store with row-level security enabled.
func New() *Store {
	return &Store{
		users:            make(map[uuid.UUID]*entity.User),
		sessions:         make(map[uuid.UUID]*entity.Session),
		refreshTokens:    make(map[uuid.UUID]*entity.RefreshToken),
		tenants:          make(map[uuid.UUID]*entity.Tenant),
		userConfig:       make(map[uuid.UUID]map[string]*string),
		tenantConfig:     make(map[uuid.UUID]map[string]*string),
		emailTokens:      make(map[string]*entity.EmailToken),
		RowLevelSecurity: true,
	}
}

// Execute implements repository.TransactionManager. Every call gets its own tenant marker.
func (s *Store) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	s.mu.Lock()
	s.Transactions++
	s.mu.Unlock()

	f := &factory{store: s}
	if err := fn(f); err != nil {
		f.rollback()

		return err
	}

	return nil
}

// Read implements repository.TransactionManager. Writes made through it are never reverted.
func (s *Store) Read(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	s.mu.Lock()
	s.Reads++
	s.mu.Unlock()

	return fn(&factory{store: s})
}

// AddUser seeds a user, assigning an ID when missing.
func (s *Store) AddUser(u *entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	stored := *u
	s.users[u.ID] = &stored

	return u
}

// AddTenant seeds a tenant, assigning an ID when missing.
func (s *Store) AddTenant(t *entity.Tenant) *entity.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	stored := *t
	s.tenants[t.ID] = &stored

	return t
}

// AddMembership seeds a membership.
func (s *Store) AddMembership(userID, tenantID uuid.UUID, active, owner bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memberships = append(s.memberships, &entity.Membership{
		UserID:   userID,
		TenantID: tenantID,
		IsActive: active,
		IsOwner:  owner,
	})
}

// AddSession seeds a session, assigning an ID when missing.
func (s *Store) AddSession(sess *entity.Session) *entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	stored := *sess
	s.sessions[sess.ID] = &stored

	return sess
}

// AddRefreshToken seeds a refresh token, assigning an ID when missing.
func (s *Store) AddRefreshToken(t *entity.RefreshToken) *entity.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	stored := *t
	s.refreshTokens[t.ID] = &stored

	return t
}

// AddEmailToken seeds an outstanding email token.
func (s *Store) AddEmailToken(t *entity.EmailToken) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *t
	s.emailTokens[emailTokenKey(t.Email, t.Purpose)] = &stored
}

// SetTenantConfig seeds a tenant configuration value.
func (s *Store) SetTenantConfig(tenantID uuid.UUID, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tenantConfig[tenantID] == nil {
		s.tenantConfig[tenantID] = make(map[string]*string)
	}
	s.tenantConfig[tenantID][key] = &value
}

// DeleteUser soft-deletes a user.
func (s *Store) DeleteUser(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		now := time.Now()
		u.DeletedAt = &now
	}
}

// User returns a copy of the stored user, including soft-deleted ones.
func (s *Store) User(id uuid.UUID) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil
	}
	c := *u

	return &c
}

// Session returns a copy of the stored session.
func (s *Store) Session(id uuid.UUID) *entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	c := *sess

	return &c
}

// Sessions returns copies of every session of userID.
func (s *Store) Sessions(userID uuid.UUID) []*entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			c := *sess
			out = append(out, &c)
		}
	}

	return out
}

// RefreshTokens returns copies of every refresh token of userID.
func (s *Store) RefreshTokens(userID uuid.UUID) []*entity.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.RefreshToken
	for _, t := range s.refreshTokens {
		if t.UserID == userID {
			c := *t
			out = append(out, &c)
		}
	}

	return out
}

// LoginAttempts returns the recorded failed attempts.
func (s *Store) LoginAttempts() []*entity.FailedLoginAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.FailedLoginAttempt, len(s.loginAttempts))
	copy(out, s.loginAttempts)

	return out
}

// EmailToken returns the outstanding token for email and purpose, nil when none.
func (s *Store) EmailToken(email string, purpose entity.EmailTokenPurpose) *entity.EmailToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.emailTokens[emailTokenKey(email, purpose)]
	if !ok {
		return nil
	}
	c := *t

	return &c
}

func emailTokenKey(email string, purpose entity.EmailTokenPurpose) string {
	return email + "|" + string(purpose)
}

type factory struct {
	store  *Store
	marker *uuid.UUID
	undo   []func()
}

// journal records how to revert a write. Callers hold store.mu.
func (f *factory) journal(undo func()) {
	f.undo = append(f.undo, undo)
}

func (f *factory) rollback() {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	for i := len(f.undo) - 1; i >= 0; i-- {
		f.undo[i]()
	}
	f.undo = nil
}

func (f *factory) saveUser(u *entity.User) {
	prev := *u
	f.journal(func() { *u = prev })
}

func (f *factory) saveSession(sess *entity.Session) {
	prev := *sess
	f.journal(func() { *sess = prev })
}

func (f *factory) saveConfigValue(values map[string]*string, key string) {
	prev, existed := values[key]
	f.journal(func() {
		if existed {
			values[key] = prev
		} else {
			delete(values, key)
		}
	})
}

func (f *factory) saveEmailToken(key string) {
	prev, existed := f.store.emailTokens[key]
	f.journal(func() {
		if existed {
			f.store.emailTokens[key] = prev
		} else {
			delete(f.store.emailTokens, key)
		}
	})
}

func (f *factory) NewUserRepository() repository.UserRepository {
	return &userRepo{f: f}
}

func (f *factory) NewSessionRepository() repository.SessionRepository {
	return &sessionRepo{f: f}
}

func (f *factory) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return &refreshTokenRepo{f: f}
}

func (f *factory) NewTenantRepository() repository.TenantRepository {
	return &tenantRepo{f: f}
}

func (f *factory) NewLoginAttemptRepository() repository.LoginAttemptRepository {
	return &loginAttemptRepo{f: f}
}

func (f *factory) NewConfigRepository() repository.ConfigRepository {
	return &configRepo{f: f}
}

func (f *factory) NewEmailTokenRepository() repository.EmailTokenRepository {
	return &emailTokenRepo{f: f}
}

func (f *factory) NewTenantContextRepository() repository.TenantContextRepository {
	return &tenantContextRepo{f: f}
}

var errRowLevelSecurity = errors.New("new row violates row-level security policy")
