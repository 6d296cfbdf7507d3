package progress

import (
	"fmt"
	"time"

	"CivicLearn/internal/app_errors"
	"CivicLearn/internal/models"
)

const (
	DefaultMaxAttempts    = 3
	DefaultCooldown       = 12 * time.Hour
	DefaultPassPercentage = 75.0
)

type Policy struct {
	MaxAttempts    int
	Cooldown       time.Duration
	PassPercentage float64
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    DefaultMaxAttempts,
		Cooldown:       DefaultCooldown,
		PassPercentage: DefaultPassPercentage,
	}
}

// AttemptLimitError reports when the next attempt unlocks.
type AttemptLimitError struct {
	UnlockAt         time.Time
	SecondsRemaining int64
}

func (e *AttemptLimitError) Error() string {
	return fmt.Sprintf("%s: retry in %ds", app_errors.ErrAttemptLimitExceeded, e.SecondsRemaining)
}

func (e *AttemptLimitError) Unwrap() error {
	return app_errors.ErrAttemptLimitExceeded
}

func (p Policy) CanAttempt(lp models.LessonProgress, now time.Time) bool {
	if lp.Attempts < p.MaxAttempts || lp.LastAttemptedAt == nil {
		return true
	}
	return !now.Before(lp.LastAttemptedAt.Add(p.Cooldown))
}

// Check returns an *AttemptLimitError when the gate is closed. It never mutates lp.
func (p Policy) Check(lp models.LessonProgress, now time.Time) error {
	if p.CanAttempt(lp, now) {
		return nil
	}
	unlockAt, remaining := p.cooldown(lp, now)
	return &AttemptLimitError{UnlockAt: unlockAt, SecondsRemaining: remaining}
}

func (p Policy) cooldown(lp models.LessonProgress, now time.Time) (time.Time, int64) {
	if lp.LastAttemptedAt == nil {
		return now, 0
	}
	unlockAt := lp.LastAttemptedAt.Add(p.Cooldown)
	remaining := int64(unlockAt.Sub(now) / time.Second)
	if remaining < 0 {
		remaining = 0
	}
	return unlockAt, remaining
}
