package entity

import "time"

// EmailTokenPurpose distinguishes the flows that mail a one-time token.
type EmailTokenPurpose string

const (
	EmailTokenPasswordReset     EmailTokenPurpose = "password_reset"
	EmailTokenEmailVerification EmailTokenPurpose = "email_verification"
)

// EmailToken is the single outstanding token per email and purpose.
type EmailToken struct {
	Email     string
	Purpose   EmailTokenPurpose
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the token is past its expiry at now.
func (t *EmailToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
