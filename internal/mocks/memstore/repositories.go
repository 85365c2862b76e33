package memstore

import (
	"context"
	"slices"
	"sort"
	"time"

	"sso/internal/domain/entity"
	"sso/internal/domain/repository"

	"github.com/google/uuid"
)

type userRepo struct{ f *factory }

func (r *userRepo) live(id uuid.UUID) (*entity.User, bool) {
	u, ok := r.f.store.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, false
	}

	return u, true
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	u, ok := r.live(id)
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u

	return &c, nil
}

func (r *userRepo) FindByIdentifier(_ context.Context, usernameOrEmail string) (*entity.User, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	for _, u := range r.f.store.users {
		if u.DeletedAt == nil && (u.Username == usernameOrEmail || u.Email == usernameOrEmail) {
			c := *u

			return &c, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	for _, u := range r.f.store.users {
		if u.DeletedAt == nil && u.Email == email {
			c := *u

			return &c, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *userRepo) IncrementFailedLoginCounter(_ context.Context, id uuid.UUID) (int, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	u, ok := r.live(id)
	if !ok {
		return 0, repository.ErrUserNotFound
	}
	r.f.saveUser(u)
	u.FailedLoginCounter++

	return u.FailedLoginCounter, nil
}

func (r *userRepo) ResetLoginFailures(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(u *entity.User) {
		u.FailedLoginCounter = 0
		u.TemporaryLockUntil = nil
	})
}

func (r *userRepo) UpdateLockState(_ context.Context, user *entity.User) error {
	return r.update(user.ID, func(u *entity.User) {
		u.IsLocked = user.IsLocked
		u.LockedAt = user.LockedAt
		u.TemporaryLockUntil = user.TemporaryLockUntil
		u.ForceLogoutAt = user.ForceLogoutAt
		u.FailedLoginCounter = user.FailedLoginCounter
	})
}

func (r *userRepo) RecordSuccessfulLogin(_ context.Context, user *entity.User) error {
	return r.update(user.ID, func(u *entity.User) {
		u.FailedLoginCounter = 0
		u.TemporaryLockUntil = nil
		u.LastLoginAt = user.LastLoginAt
		u.LastLoginIP = user.LastLoginIP
		u.LastTenantID = user.LastTenantID
		if user.RememberTokenHash != nil {
			u.RememberTokenHash = user.RememberTokenHash
		}
	})
}

func (r *userRepo) UpdateLastTenant(_ context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return r.update(id, func(u *entity.User) {
		u.LastTenantID = &tenantID
	})
}

func (r *userRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(id, func(u *entity.User) {
		u.PasswordHash = passwordHash
	})
}

func (r *userRepo) MarkEmailVerified(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.update(id, func(u *entity.User) {
		u.EmailVerifiedAt = &at
	})
}

func (r *userRepo) update(id uuid.UUID, apply func(*entity.User)) error {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	u, ok := r.live(id)
	if !ok {
		return repository.ErrUserNotFound
	}
	r.f.saveUser(u)
	apply(u)
	u.UpdatedAt = time.Now()

	return nil
}

type sessionRepo struct{ f *factory }

func (r *sessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	c := *session
	r.f.store.sessions[session.ID] = &c
	r.f.journal(func() { delete(r.f.store.sessions, c.ID) })

	return nil
}

func (r *sessionRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Session, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	sess, ok := r.f.store.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	c := *sess

	return &c, nil
}

func (r *sessionRepo) FindWithUser(_ context.Context, id uuid.UUID) (*entity.SessionWithUser, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	sess, ok := r.f.store.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	c := *sess
	result := &entity.SessionWithUser{Session: &c}

	if u, ok := r.f.store.users[sess.UserID]; ok && u.DeletedAt == nil {
		uc := *u
		result.User = &uc
	}

	return result, nil
}

func (r *sessionRepo) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	var out []*entity.Session
	for _, sess := range r.f.store.sessions {
		if sess.UserID == userID && sess.RevokedAt == nil {
			c := *sess
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})

	return out, nil
}

func (r *sessionRepo) TouchActivity(_ context.Context, id uuid.UUID, at time.Time) error {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	sess, ok := r.f.store.sessions[id]
	if !ok {
		return repository.ErrSessionNotFound
	}
	r.f.saveSession(sess)
	sess.LastActivity = at

	return nil
}

func (r *sessionRepo) Revoke(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	sess, ok := r.f.store.sessions[id]
	if !ok || sess.RevokedAt != nil {
		return false, nil
	}
	r.f.saveSession(sess)
	sess.RevokedAt = &at

	return true, nil
}

func (r *sessionRepo) RevokeAllByUser(_ context.Context, userID uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	var ids []uuid.UUID
	for _, sess := range r.f.store.sessions {
		if sess.UserID == userID && sess.RevokedAt == nil {
			r.f.saveSession(sess)
			sess.RevokedAt = &at
			ids = append(ids, sess.ID)
		}
	}

	return ids, nil
}

type refreshTokenRepo struct{ f *factory }

func (r *refreshTokenRepo) Create(_ context.Context, token *entity.RefreshToken) error {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	c := *token
	r.f.store.refreshTokens[token.ID] = &c
	r.f.journal(func() { delete(r.f.store.refreshTokens, c.ID) })

	return nil
}

func (r *refreshTokenRepo) FindByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	for _, t := range r.f.store.refreshTokens {
		if t.TokenHash == tokenHash {
			c := *t

			return &c, nil
		}
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *refreshTokenRepo) RevokeIfActive(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	n := r.revoke(at, func(t *entity.RefreshToken) bool { return t.ID == id })

	return n == 1, nil
}

func (r *refreshTokenRepo) RevokeBySession(_ context.Context, sessionID uuid.UUID, at time.Time) (int64, error) {
	return r.revoke(at, func(t *entity.RefreshToken) bool { return t.SessionID == sessionID }), nil
}

func (r *refreshTokenRepo) RevokeByUser(_ context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	return r.revoke(at, func(t *entity.RefreshToken) bool { return t.UserID == userID }), nil
}

func (r *refreshTokenRepo) revoke(at time.Time, match func(*entity.RefreshToken) bool) int64 {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	var n int64
	for _, t := range r.f.store.refreshTokens {
		if !t.Revoked && match(t) {
			prev := *t
			r.f.journal(func() { *t = prev })
			t.Revoked = true
			t.RevokedAt = &at
			n++
		}
	}

	return n
}

type tenantRepo struct{ f *factory }

func (r *tenantRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Tenant, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	t, ok := r.f.store.tenants[id]
	if !ok {
		return nil, repository.ErrTenantNotFound
	}
	c := *t

	return &c, nil
}

func (r *tenantRepo) withTenant(m *entity.Membership) *entity.Membership {
	c := *m
	if t, ok := r.f.store.tenants[m.TenantID]; ok {
		tc := *t
		c.Tenant = &tc
	}

	return &c
}

func (r *tenantRepo) ListMemberships(_ context.Context, userID uuid.UUID) (entity.Memberships, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	var out entity.Memberships
	for _, m := range r.f.store.memberships {
		if m.UserID == userID {
			out = append(out, r.withTenant(m))
		}
	}

	return out, nil
}

func (r *tenantRepo) FindMembership(_ context.Context, userID, tenantID uuid.UUID) (*entity.Membership, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	for _, m := range r.f.store.memberships {
		if m.UserID == userID && m.TenantID == tenantID {
			return r.withTenant(m), nil
		}
	}

	return nil, repository.ErrMembershipNotFound
}

type loginAttemptRepo struct{ f *factory }

func (r *loginAttemptRepo) Record(_ context.Context, attempt *entity.FailedLoginAttempt) error {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	attempt.ID = uuid.New()
	c := *attempt
	r.f.store.loginAttempts = append(r.f.store.loginAttempts, &c)
	r.f.journal(func() {
		r.f.store.loginAttempts = slices.DeleteFunc(r.f.store.loginAttempts, func(a *entity.FailedLoginAttempt) bool {
			return a == &c
		})
	})

	return nil
}

type configRepo struct{ f *factory }

func listConfig(ownerID uuid.UUID, values map[string]*string) []*entity.ConfigEntry {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	entries := make([]*entity.ConfigEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, &entity.ConfigEntry{OwnerID: ownerID, Key: k, Value: values[k]})
	}

	return entries
}

func (r *configRepo) ListUserConfig(_ context.Context, userID uuid.UUID) ([]*entity.ConfigEntry, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	return listConfig(userID, r.f.store.userConfig[userID]), nil
}

func (r *configRepo) UpsertUserConfig(_ context.Context, userID uuid.UUID, key string, value *string) error {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	if r.f.store.userConfig[userID] == nil {
		r.f.store.userConfig[userID] = make(map[string]*string)
	}
	r.f.saveConfigValue(r.f.store.userConfig[userID], key)
	r.f.store.userConfig[userID][key] = value

	return nil
}

func (r *configRepo) visible(tenantID uuid.UUID) bool {
	if !r.f.store.RowLevelSecurity {
		return true
	}

	return r.f.marker != nil && *r.f.marker == tenantID
}

func (r *configRepo) ListTenantConfig(_ context.Context, tenantID uuid.UUID) ([]*entity.ConfigEntry, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	if !r.visible(tenantID) {
		return []*entity.ConfigEntry{}, nil
	}

	return listConfig(tenantID, r.f.store.tenantConfig[tenantID]), nil
}

func (r *configRepo) UpsertTenantConfig(_ context.Context, tenantID uuid.UUID, key string, value *string) error {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	if !r.visible(tenantID) {
		return errRowLevelSecurity
	}
	if r.f.store.tenantConfig[tenantID] == nil {
		r.f.store.tenantConfig[tenantID] = make(map[string]*string)
	}
	r.f.saveConfigValue(r.f.store.tenantConfig[tenantID], key)
	r.f.store.tenantConfig[tenantID][key] = value

	return nil
}

type emailTokenRepo struct{ f *factory }

func (r *emailTokenRepo) Upsert(_ context.Context, token *entity.EmailToken) error {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	key := emailTokenKey(token.Email, token.Purpose)
	r.f.saveEmailToken(key)
	c := *token
	r.f.store.emailTokens[key] = &c

	return nil
}

func (r *emailTokenRepo) Find(_ context.Context, email string, purpose entity.EmailTokenPurpose) (*entity.EmailToken, error) {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	t, ok := r.f.store.emailTokens[emailTokenKey(email, purpose)]
	if !ok {
		return nil, repository.ErrEmailTokenNotFound
	}
	c := *t

	return &c, nil
}

func (r *emailTokenRepo) Delete(_ context.Context, email string, purpose entity.EmailTokenPurpose) error {
	r.f.store.mu.Lock()
	defer r.f.store.mu.Unlock()

	key := emailTokenKey(email, purpose)
	r.f.saveEmailToken(key)
	delete(r.f.store.emailTokens, key)

	return nil
}

type tenantContextRepo struct{ f *factory }

func (r *tenantContextRepo) Set(_ context.Context, tenantID uuid.UUID) error {
	if err := r.f.store.SetTenantErr; err != nil {
		return err
	}
	r.f.marker = &tenantID

	return nil
}

func (r *tenantContextRepo) Current(_ context.Context) (*uuid.UUID, error) {
	if r.f.marker == nil {
		return nil, nil
	}
	c := *r.f.marker

	return &c, nil
}

func (r *tenantContextRepo) Clear(_ context.Context) error {
	r.f.marker = nil

	return nil
}
