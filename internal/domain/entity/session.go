package entity

import (
	"time"

	"github.com/google/uuid"
)

// Login methods recorded on the session payload.
const (
	LoginMethodPassword = "password"
)

// Session is one authenticated device or browser. Its ID is the only claim carried by access tokens.
type Session struct {
	ID           uuid.UUID      // Referenced by the access token "session_id" claim.
	UserID       uuid.UUID      // Owner of the session.
	IPAddress    string         // Client IP at login.
	UserAgent    string         // Raw user agent at login.
	DeviceName   string         // Supplied by the client or inferred from the user agent.
	Payload      SessionPayload // Login metadata.
	LastActivity time.Time      // Touched on every refresh rotation.
	CreatedAt    time.Time      // Login time.
	RevokedAt    *time.Time     // Nil while the session is active.
}

// SessionPayload holds login metadata persisted alongside the session.
type SessionPayload struct {
	LoginMethod string  `json:"login_method"`
	RememberMe  bool    `json:"remember_me,omitempty"`
	Latitude    *string `json:"latitude,omitempty"`
	Longitude   *string `json:"longitude,omitempty"`
}

// IsRevoked reports whether the session can no longer authorize requests.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// DeviceInfo describes the client a session is created for.
type DeviceInfo struct {
	IPAddress  string
	UserAgent  string
	DeviceName string
	Latitude   *string
	Longitude  *string
	RememberMe bool
}

// RefreshToken is a single-use rotation unit bound to one session.
type RefreshToken struct {
	ID        uuid.UUID  // The unique ID for this specific refresh token record.
	UserID    uuid.UUID  // Owner of the token.
	SessionID uuid.UUID  // Session this token renews.
	TokenHash string     // SHA-256 hex digest of the raw secret; the secret itself is never stored.
	ExpiresAt time.Time  // Hard expiry.
	Revoked   bool       // Set when rotated, logged out or cascaded from a session revoke.
	RevokedAt *time.Time // When the token was revoked.
	CreatedAt time.Time  // Issue time.
}

// IsExpired reports whether the token is past its expiry at now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// SessionWithUser is the single-fetch result the authentication gate evaluates.
type SessionWithUser struct {
	Session *Session
	User    *User // Nil when the owning user no longer exists or is soft-deleted.
}

// Identity is the resolved caller attached to an authenticated request.
type Identity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	TenantID  *uuid.UUID
}
