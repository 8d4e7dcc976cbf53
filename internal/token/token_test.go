package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "xs2gate/pkg/domain-errors"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, key []byte, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestNewVerifierRequiresKey(t *testing.T) {
	_, err := NewVerifier(nil, "")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
}

func TestVerify(t *testing.T) {
	verifier, err := NewVerifier(testKey, "")
	require.NoError(t, err)

	t.Run("accepts a valid token", func(t *testing.T) {
		raw := signToken(t, testKey, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "psu-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		assert.NoError(t, verifier.Verify(context.Background(), raw))
	})

	t.Run("expired token returns ErrExpired", func(t *testing.T) {
		raw := signToken(t, testKey, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "psu-1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		assert.ErrorIs(t, verifier.Verify(context.Background(), raw), ErrExpired)
	})

	t.Run("token without expiry is invalid", func(t *testing.T) {
		raw := signToken(t, testKey, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "psu-1"})
		assert.ErrorIs(t, verifier.Verify(context.Background(), raw), ErrInvalid)
	})

	t.Run("wrong key is invalid", func(t *testing.T) {
		raw := signToken(t, []byte("some-other-key"), jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "psu-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		assert.ErrorIs(t, verifier.Verify(context.Background(), raw), ErrInvalid)
	})

	t.Run("garbage is invalid", func(t *testing.T) {
		assert.ErrorIs(t, verifier.Verify(context.Background(), "not.a.jwt"), ErrInvalid)
	})
}

func TestVerifyIssuer(t *testing.T) {
	verifier, err := NewVerifier(testKey, "https://auth.bank.example")
	require.NoError(t, err)

	t.Run("matching issuer passes", func(t *testing.T) {
		raw := signToken(t, testKey, jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": "https://auth.bank.example",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		assert.NoError(t, verifier.Verify(context.Background(), raw))
	})

	t.Run("foreign issuer is invalid", func(t *testing.T) {
		raw := signToken(t, testKey, jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": "https://attacker.example",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		assert.ErrorIs(t, verifier.Verify(context.Background(), raw), ErrInvalid)
	})
}
