package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennitter/pennitter-backend/internal/models"
)

func TestRegisterLoginFailureCountsUpToThreshold(t *testing.T) {
	now := time.Now()
	u := &models.User{}

	assert.Equal(t, 1, RegisterLoginFailure(u, now))
	assert.Nil(t, u.LockoutUntil)
	assert.Equal(t, 2, RegisterLoginFailure(u, now))
	assert.Nil(t, u.LockoutUntil)

	// Third failure triggers the lockout and resets the counter.
	assert.Equal(t, 3, RegisterLoginFailure(u, now))
	require.NotNil(t, u.LockoutUntil)
	assert.Equal(t, now.Add(LockoutDuration), *u.LockoutUntil)
	assert.Equal(t, 0, u.LoginAttempts)
}

func TestIsLockedWindow(t *testing.T) {
	now := time.Now()
	u := &models.User{}

	assert.False(t, IsLocked(u, now))

	for i := 0; i < MaxFailedLoginAttempts; i++ {
		RegisterLoginFailure(u, now)
	}

	assert.True(t, IsLocked(u, now))
	assert.True(t, IsLocked(u, now.Add(LockoutDuration-time.Second)))

	// Lockout expires lazily; no sweeper resets the timestamp.
	assert.False(t, IsLocked(u, now.Add(LockoutDuration)))
	assert.False(t, IsLocked(u, now.Add(LockoutDuration+time.Second)))
}

func TestRegisterLoginSuccessResetsState(t *testing.T) {
	now := time.Now()
	u := &models.User{}

	RegisterLoginFailure(u, now)
	RegisterLoginFailure(u, now)
	assert.Equal(t, 2, u.LoginAttempts)

	RegisterLoginSuccess(u)
	assert.Equal(t, 0, u.LoginAttempts)
	assert.Nil(t, u.LockoutUntil)

	// After a success the failure count starts over.
	assert.Equal(t, 1, RegisterLoginFailure(u, now))
}

func TestFailuresAfterExpiredLockoutStartFresh(t *testing.T) {
	now := time.Now()
	u := &models.User{}

	for i := 0; i < MaxFailedLoginAttempts; i++ {
		RegisterLoginFailure(u, now)
	}
	later := now.Add(LockoutDuration + time.Minute)
	require.False(t, IsLocked(u, later))

	// The counter was reset when the lockout triggered, so the next
	// failure is attempt one of a new run.
	assert.Equal(t, 1, RegisterLoginFailure(u, later))
}
