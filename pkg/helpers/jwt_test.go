package helpers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/foundly/foundly-api/pkg/helpers"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	tok, exp, err := m.GenerateAccessToken("user-1", "ADMIN", "sess-1")
	require.NoError(t, err)
	require.True(t, exp.After(time.Now()))

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "ADMIN", claims.Role)
	require.Equal(t, "sess-1", claims.SessionID)
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	m := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)

	access, _, err := m.GenerateAccessToken("user-1", "USER", "sess-1")
	require.NoError(t, err)
	_, err = m.ParseRefreshToken(access)
	require.Error(t, err)

	refresh, _, err := m.GenerateRefreshToken("user-1", "USER", "sess-1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(refresh)
	require.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := helpers.NewJWTManager("access-secret", "refresh-secret", -time.Minute, time.Hour)

	tok, _, err := m.GenerateAccessToken("user-1", "USER", "sess-1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(tok)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := helpers.HashPassword("sup3rsecret")
	require.NoError(t, err)
	require.NotEqual(t, "sup3rsecret", hash)
	require.True(t, helpers.CompareHashAndPassword(hash, "sup3rsecret"))
	require.False(t, helpers.CompareHashAndPassword(hash, "wrong"))
}
