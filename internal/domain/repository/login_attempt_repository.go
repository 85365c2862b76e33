package repository

import (
	"context"

	"sso/internal/domain/entity"
)

// LoginAttemptRepository appends failed credential checks. It is write-only.
type LoginAttemptRepository interface {
	Record(ctx context.Context, attempt *entity.FailedLoginAttempt) error
}
