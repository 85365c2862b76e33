package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTypeAccess is the only token type the signer issues.
const TokenTypeAccess = "access"

// AccessClaims is the full access token payload. It deliberately carries no user data:
// identity and account state are resolved from the session on every request.
type AccessClaims struct {
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies access tokens.
type TokenService interface {
	// IssueAccessToken signs a token referencing sessionID.
	IssueAccessToken(sessionID uuid.UUID) (string, error)

	// ParseAccessToken verifies signature, algorithm, expiry and token type.
	ParseAccessToken(token string) (*AccessClaims, error)

	// AccessTokenTTL returns the configured access token lifetime.
	AccessTokenTTL() time.Duration
}

// OpaqueTokenService produces random client-held secrets and their stored digests.
type OpaqueTokenService interface {
	// Generate returns a hex-encoded random secret of size bytes and its digest.
	Generate(size int) (raw string, hash string, err error)

	// Hash returns the digest stored for raw.
	Hash(raw string) string
}
