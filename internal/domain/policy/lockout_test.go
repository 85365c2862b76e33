package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_Tiers(t *testing.T) {
	tests := []struct {
		attempts int
		kind     LockKind
		duration time.Duration
		reason   string
	}{
		{attempts: 0, kind: LockNone, reason: ReasonInvalidCredentials},
		{attempts: 1, kind: LockTemporary, duration: 5 * time.Minute, reason: ReasonTemporary5Min},
		{attempts: 5, kind: LockTemporary, duration: 5 * time.Minute, reason: ReasonTemporary5Min},
		{attempts: 6, kind: LockTemporary, duration: 15 * time.Minute, reason: ReasonTemporary15Min},
		{attempts: 10, kind: LockTemporary, duration: 15 * time.Minute, reason: ReasonTemporary15Min},
		{attempts: 11, kind: LockPermanent, reason: ReasonPermanent},
		{attempts: 50, kind: LockPermanent, reason: ReasonPermanent},
	}

	for _, tt := range tests {
		action := Evaluate(tt.attempts)
		assert.Equal(t, tt.kind, action.Kind, "attempts=%d", tt.attempts)
		assert.Equal(t, tt.duration, action.Duration, "attempts=%d", tt.attempts)
		assert.Equal(t, tt.reason, action.Reason, "attempts=%d", tt.attempts)
		assert.Equal(t, tt.kind == LockPermanent, action.RevokesSessions(), "attempts=%d", tt.attempts)
	}
}

func TestEvaluate_Monotonic(t *testing.T) {
	prev := Evaluate(1).Severity()
	for attempts := 2; attempts <= 30; attempts++ {
		cur := Evaluate(attempts).Severity()
		assert.GreaterOrEqual(t, cur, prev, "severity decreased at %d attempts", attempts)
		prev = cur
	}
}
