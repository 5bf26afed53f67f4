package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHS256Verifier(t *testing.T) {
	t.Parallel()

	secret := []byte("test-shared-secret")

	newClaims := func(ttl time.Duration) Claims {
		return Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "01HUSER",
				Issuer:    "idp.example",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			},
			Email:          "alice@example.com",
			EmailConfirmed: true,
			Name:           "Alice",
		}
	}

	t.Run("round trips identity claims", func(t *testing.T) {
		raw, err := SignHS256(newClaims(time.Hour), secret)
		require.NoError(t, err)

		v := HS256Verifier{Secret: secret}
		claims, err := v.Verify(raw)
		require.NoError(t, err)
		require.Equal(t, "01HUSER", claims.Subject)
		require.Equal(t, "alice@example.com", claims.Email)
		require.True(t, claims.EmailConfirmed)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		raw, err := SignHS256(newClaims(time.Hour), secret)
		require.NoError(t, err)

		v := HS256Verifier{Secret: []byte("other-secret")}
		_, err = v.Verify(raw)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		raw, err := SignHS256(newClaims(-time.Minute), secret)
		require.NoError(t, err)

		v := HS256Verifier{Secret: secret}
		_, err = v.Verify(raw)
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("enforces issuer when configured", func(t *testing.T) {
		raw, err := SignHS256(newClaims(time.Hour), secret)
		require.NoError(t, err)

		v := HS256Verifier{Secret: secret, Issuer: "someone-else"}
		_, err = v.Verify(raw)
		require.ErrorIs(t, err, ErrTokenInvalid)

		v.Issuer = "idp.example"
		_, err = v.Verify(raw)
		require.NoError(t, err)
	})
}

func TestValidateExpiry(t *testing.T) {
	t.Parallel()

	c := Claims{}
	require.NoError(t, c.ValidateExpiry())

	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Second))
	require.ErrorIs(t, c.ValidateExpiry(), ErrTokenExpired)
}
