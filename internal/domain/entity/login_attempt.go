package entity

import (
	"time"

	"github.com/google/uuid"
)

// FailedLoginAttempt is an append-only record of a failed credential check.
type FailedLoginAttempt struct {
	ID              uuid.UUID
	UserID          *uuid.UUID // Nil when the identifier matched no user.
	UsernameOrEmail string
	IPAddress       string
	UserAgent       string
	AttemptedAt     time.Time
}
