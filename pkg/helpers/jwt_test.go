package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	tok, exp, err := m.GenerateAccessToken("u1", "u1@example.com", "sid-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1@example.com", claims.Email)
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestRefreshTokenNotValidAsAccess(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	refresh, _, err := m.GenerateRefreshToken("u1", "u1@example.com", "sid-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(refresh)
	assert.Error(t, err)

	claims, err := m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)

	tok, _, err := m.GenerateAccessToken("u1", "u1@example.com", "sid-1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
}

func TestPasswordHashAndPolicy(t *testing.T) {
	hash, err := HashPassword("Correct1Horse", 4)
	require.NoError(t, err)
	assert.True(t, CompareHashAndPassword(hash, "Correct1Horse"))
	assert.False(t, CompareHashAndPassword(hash, "wrong"))

	assert.True(t, PasswordMeetsPolicy("Abcdef12"))
	assert.False(t, PasswordMeetsPolicy("short1A"))
	assert.False(t, PasswordMeetsPolicy("alllowercase1"))
	assert.False(t, PasswordMeetsPolicy("ALLUPPERCASE1"))
	assert.False(t, PasswordMeetsPolicy("NoDigitsHere"))
}
