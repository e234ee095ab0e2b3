package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func authAt(now time.Time, secret string) *Auth {
	a := NewAuth(nil, secret)
	a.now = func() time.Time { return now }
	return a
}

func TestSignAndParseToken(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	a := authAt(now, "test-secret")
	userID := primitive.NewObjectID().Hex()

	token, err := a.signToken(userID, now)
	require.NoError(t, err)

	claims, err := a.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, now.Add(TokenTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	now := time.Now()
	token, err := authAt(now, "secret-one").signToken("abc", now)
	require.NoError(t, err)

	_, err = authAt(now, "secret-two").parseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	past := time.Now().Add(-2 * TokenTTL)
	a := authAt(past, "test-secret")
	token, err := a.signToken("abc", past)
	require.NoError(t, err)

	_, err = a.parseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	a := authAt(time.Now(), "test-secret")
	_, err := a.parseToken("not-a-token")
	assert.Error(t, err)
}

func TestIsExpiringSoon(t *testing.T) {
	issued := time.Now().Truncate(time.Second)
	a := authAt(issued, "test-secret")
	token, err := a.signToken("abc", issued)
	require.NoError(t, err)

	// Fresh token: expiry is well outside the warning window.
	soon, err := a.IsExpiringSoon(token)
	require.NoError(t, err)
	assert.False(t, soon)

	// Move the clock to just inside the warning window.
	a.now = func() time.Time {
		return issued.Add(TokenTTL - ExpiryWarningWindow + time.Second)
	}
	soon, err = a.IsExpiringSoon(token)
	require.NoError(t, err)
	assert.True(t, soon)
}
