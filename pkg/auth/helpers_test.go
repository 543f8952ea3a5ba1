package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func sessionClaims(sub string, exp time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   sub,
		"aud":   "authenticated",
		"role":  "authenticated",
		"email": "user@example.com",
		"exp":   exp.Unix(),
		"iat":   time.Now().Unix(),
	}
}
