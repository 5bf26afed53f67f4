package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a raw bearer token and returns its claims.
type Verifier interface {
	Verify(raw string) (Claims, error)
}

// HS256Verifier verifies tokens signed with a shared HMAC secret, the
// integration mode our identity provider exposes for backend services.
type HS256Verifier struct {
	Secret []byte
	Issuer string // optional; enforced when non-empty
}

func (v HS256Verifier) Verify(raw string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return v.Secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, ErrTokenInvalid
	}
	if !token.Valid {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

// SignHS256 mints a token for the given claims. The service itself never
// signs tokens; this mirrors the identity provider for tests and local dev.
func SignHS256(claims Claims, secret []byte) (string, error) {
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
