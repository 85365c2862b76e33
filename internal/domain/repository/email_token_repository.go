package repository

import (
	"context"
	"errors"

	"sso/internal/domain/entity"
)

// ErrEmailTokenNotFound is returned when no token is outstanding for the email and purpose.
var ErrEmailTokenNotFound = errors.New("email token not found")

// EmailTokenRepository keeps at most one outstanding token per email and purpose.
type EmailTokenRepository interface {
	// Upsert replaces any outstanding token for the same email and purpose.
	Upsert(ctx context.Context, token *entity.EmailToken) error

	Find(ctx context.Context, email string, purpose entity.EmailTokenPurpose) (*entity.EmailToken, error)

	Delete(ctx context.Context, email string, purpose entity.EmailTokenPurpose) error
}
