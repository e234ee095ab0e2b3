package services

import (
	"time"

	"github.com/pennitter/pennitter-backend/internal/models"
)

const (
	// MaxFailedLoginAttempts is the threshold at which an account locks.
	MaxFailedLoginAttempts = 3
	// LockoutDuration is how long an account stays locked after the
	// threshold is reached.
	LockoutDuration = 60 * time.Second
)

// IsLocked reports whether a lockout timestamp is set and still in the
// future. Expired lockouts are treated as unlocked on the next check; nothing
// sweeps them actively.
func IsLocked(u *models.User, now time.Time) bool {
	return u.LockoutUntil != nil && u.LockoutUntil.After(now)
}

// RegisterLoginSuccess resets the failed-attempt counter and clears any
// lockout. The caller persists the mutated user.
func RegisterLoginSuccess(u *models.User) {
	u.LoginAttempts = 0
	u.LockoutUntil = nil
}

// RegisterLoginFailure increments the failed-attempt counter. When the
// counter reaches the threshold it sets the lockout expiry and resets the
// counter to zero. Returns the pre-reset attempt count, so a return value of
// MaxFailedLoginAttempts means the lockout was just triggered. The caller
// persists the mutated user.
func RegisterLoginFailure(u *models.User, now time.Time) int {
	u.LoginAttempts++
	attempts := u.LoginAttempts
	if u.LoginAttempts == MaxFailedLoginAttempts {
		until := now.Add(LockoutDuration)
		u.LockoutUntil = &until
		u.LoginAttempts = 0
	}
	return attempts
}
