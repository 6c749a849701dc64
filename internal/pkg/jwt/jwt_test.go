package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test_secret"

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateAccessToken(7, "alice", "INVESTOR", secret, 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "INVESTOR", claims.Role)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "cinefund", claims.Issuer)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(7, "alice", "INVESTOR", secret, 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "other")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_Expired(t *testing.T) {
	token, err := GenerateAccessToken(7, "alice", "INVESTOR", secret, -5)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, secret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseUnverified(t *testing.T) {
	token, err := GenerateAccessToken(3, "prod", "PRODUCER", secret, -5)
	require.NoError(t, err)

	// expired and signed with an unknown key, still decodable
	claims, err := ParseUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "PRODUCER", claims.Role)
	assert.Equal(t, int64(3), claims.UserID)

	_, err = ParseUnverified("opaque-token")
	assert.ErrorIs(t, err, ErrNotJWT)
}
