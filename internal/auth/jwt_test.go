package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Minute)

	t.Run("round trip", func(t *testing.T) {
		token, err := manager.GenerateAccessJWT("user-1")
		require.NoError(t, err)

		userID, err := manager.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", userID)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTManager("test-secret", time.Minute)
		expired.duration = -time.Minute

		token, err := expired.GenerateAccessJWT("user-1")
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredJWTToken)
	})

	t.Run("foreign secret", func(t *testing.T) {
		token, err := NewJWTManager("other-secret", time.Minute).GenerateAccessJWT("user-1")
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("unsigned token is refused", func(t *testing.T) {
		claims := &accessClaims{
			UserID:         "user-1",
			StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Minute).Unix()},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := &accessClaims{
			UserID: "user-1",
			StandardClaims: jwt.StandardClaims{
				Issuer:    "someone-else",
				ExpiresAt: time.Now().Add(time.Minute).Unix(),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := manager.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidJWTToken)
	})

	t.Run("default duration", func(t *testing.T) {
		assert.Equal(t, defaultJWTDuration, NewJWTManager("s", 0).duration)
	})
}
