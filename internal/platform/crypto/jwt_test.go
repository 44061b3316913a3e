package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret-key"
	actorID := "actor-123"

	t.Run("valid token", func(t *testing.T) {
		token, jti, err := GenerateToken(secret, actorID, time.Hour)
		require.NoError(t, err)
		assert.Len(t, jti, 32)

		claims, err := ParseToken(secret, token)
		require.NoError(t, err)
		assert.Equal(t, actorID, claims.Sub)
		assert.Equal(t, jti, claims.ID)
	})

	t.Run("unique jti", func(t *testing.T) {
		_, a, err := GenerateToken(secret, actorID, time.Hour)
		require.NoError(t, err)
		_, b, err := GenerateToken(secret, actorID, time.Hour)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("invalid signature", func(t *testing.T) {
		token, _, err := GenerateToken("wrong-secret", actorID, time.Hour)
		require.NoError(t, err)

		claims, err := ParseToken(secret, token)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("expired token", func(t *testing.T) {
		token, _, err := GenerateToken(secret, actorID, -time.Minute)
		require.NoError(t, err)

		claims, err := ParseToken(secret, token)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		c := Claims{Sub: actorID, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = ParseToken(secret, token)
		assert.Error(t, err)
	})

	t.Run("malformed token", func(t *testing.T) {
		claims, err := ParseToken(secret, "not.a.valid.token")
		assert.Error(t, err)
		assert.Nil(t, claims)
	})
}

func TestHashAndVerifyPassword_JWTSuite(t *testing.T) {
	hash, err := HashPassword("Valid123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Valid123!", hash)

	assert.True(t, VerifyPassword(hash, "Valid123!"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestNewRefreshToken(t *testing.T) {
	token, hash, err := NewRefreshToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, HashRefreshToken(token), hash)
	assert.NotEqual(t, token, hash)
}
