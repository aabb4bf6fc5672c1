package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_AccessRoundTrip(t *testing.T) {
	m := NewManager("access-secret", "refresh-secret", 15, 7)

	token, err := m.AccessToken(42, "ana@example.com", "Ana")
	require.NoError(t, err)

	claims, err := m.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "lawdesk-api", claims.Issuer)
}

func TestManager_RejectsWrongSecretAndKind(t *testing.T) {
	m := NewManager("access-secret", "refresh-secret", 15, 7)
	other := NewManager("other", "other", 15, 7)

	token, err := other.AccessToken(1, "x@example.com", "X")
	require.NoError(t, err)
	_, err = m.ParseAccess(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	refresh, err := m.RefreshToken(1, "abc")
	require.NoError(t, err)
	_, err = m.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	rc, err := m.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "abc", rc.TokenID)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("access-secret", "refresh-secret", -1, 7)

	token, err := m.AccessToken(1, "x@example.com", "X")
	require.NoError(t, err)

	_, err = m.ParseAccess(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
