package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager("test-secret", 15*time.Minute, 24*time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken(42, "storyteller", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "storyteller", claims.Username)
	assert.True(t, claims.IsAdmin)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateRefreshToken(7)
	require.NoError(t, err)

	claims, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
}

func TestTokenTypeMismatch(t *testing.T) {
	m := newTestManager()

	access, err := m.GenerateAccessToken(1, "user", false)
	require.NoError(t, err)
	refresh, err := m.GenerateRefreshToken(1)
	require.NoError(t, err)

	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)

	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := newTestManager().GenerateAccessToken(1, "user", false)
	require.NoError(t, err)

	other := NewManager("different-secret", 15*time.Minute, 24*time.Hour)
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, 24*time.Hour)

	token, err := m.GenerateAccessToken(1, "user", false)
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestGarbageRejected(t *testing.T) {
	m := newTestManager()

	_, err := m.ValidateToken("not-a-token")
	assert.Error(t, err)

	_, err = m.ValidateToken("")
	assert.Error(t, err)
}
