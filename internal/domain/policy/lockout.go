// Package policy holds pure account-security rules.
package policy

import "time"

// Lockout tiers.
const (
	ShortLockThreshold = 5  // attempts 1-5 lock for ShortLockDuration
	LongLockThreshold  = 10 // attempts 6-10 lock for LongLockDuration, above that the lock is permanent

	ShortLockDuration = 5 * time.Minute
	LongLockDuration  = 15 * time.Minute
	ForceLogoutWindow = 24 * time.Hour
)

// LockKind classifies the action taken after a failed password check.
type LockKind int

const (
	LockNone LockKind = iota
	LockTemporary
	LockPermanent
)

// Reasons reported for each lockout tier.
const (
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonTemporary5Min      = "temporary_locked_5min"
	ReasonTemporary15Min     = "temporary_locked_15min"
	ReasonPermanent          = "account_permanently_locked"
)

// LockAction is the outcome of evaluating a failed-attempt count.
type LockAction struct {
	Kind     LockKind
	Duration time.Duration // Set for LockTemporary.
	Reason   string
}

// RevokesSessions reports whether every session of the user must be revoked.
func (a LockAction) RevokesSessions() bool {
	return a.Kind == LockPermanent
}

// Evaluate maps the failed-attempt count, already incremented, to a lock action.
func Evaluate(failedAttempts int) LockAction {
	switch {
	case failedAttempts <= 0:
		return LockAction{Kind: LockNone, Reason: ReasonInvalidCredentials}
	case failedAttempts <= ShortLockThreshold:
		return LockAction{Kind: LockTemporary, Duration: ShortLockDuration, Reason: ReasonTemporary5Min}
	case failedAttempts <= LongLockThreshold:
		return LockAction{Kind: LockTemporary, Duration: LongLockDuration, Reason: ReasonTemporary15Min}
	default:
		return LockAction{Kind: LockPermanent, Reason: ReasonPermanent}
	}
}

// Severity orders actions so escalation can be compared.
func (a LockAction) Severity() time.Duration {
	switch a.Kind {
	case LockPermanent:
		return 1<<63 - 1
	case LockTemporary:
		return a.Duration
	default:
		return 0
	}
}
