// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"sso/internal/domain/entity"

	"github.com/google/uuid"
)

// TokenTypeBearer is reported with every issued token pair.
const TokenTypeBearer = "Bearer"

// --- Input DTOs ---

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	UsernameOrEmail string
	Password        string
	Device          entity.DeviceInfo
}

// --- Output DTOs ---

// UserSummary is the user block returned with a login.
type UserSummary struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	EmailVerified bool       `json:"emailVerified"`
	LastTenantID  *uuid.UUID `json:"lastTenantId"`
	LastLoginAt   *time.Time `json:"lastLoginAt"`
}

// NewUserSummary projects the public fields of user.
func NewUserSummary(user *entity.User) *UserSummary {
	return &UserSummary{
		ID:            user.ID,
		Name:          user.Name,
		Username:      user.Username,
		Email:         user.Email,
		EmailVerified: user.EmailVerifiedAt != nil,
		LastTenantID:  user.LastTenantID,
		LastLoginAt:   user.LastLoginAt,
	}
}

// AuthOutput is a freshly issued token pair.
type AuthOutput struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"`
	TokenType    string       `json:"tokenType"`
	User         *UserSummary `json:"user,omitempty"`
}

// AuthUsecase is the login state machine.
type AuthUsecase interface {
	// Login verifies credentials against the lockout and tenant rules and opens a new session.
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
}
