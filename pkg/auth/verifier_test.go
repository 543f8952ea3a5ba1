package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodmoney/quota/pkg/auth"
)

func TestNewVerifier(t *testing.T) {
	t.Parallel()

	_, err := auth.NewVerifier(auth.Config{JWTSecret: "  "})
	assert.ErrorIs(t, err, auth.ErrMissingSecret)
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	v, err := auth.NewVerifier(auth.Config{JWTSecret: testSecret, Audience: "authenticated"})
	require.NoError(t, err)
	userID := uuid.New()

	t.Run("valid session token", func(t *testing.T) {
		t.Parallel()
		exp := time.Now().Add(time.Hour)
		token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), sessionClaims(userID.String(), exp))

		claims, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "user@example.com", claims.Email)
		assert.Equal(t, "authenticated", claims.Role)
		assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		token := sign(t, jwt.SigningMethodHS256, []byte("another-secret"), sessionClaims(userID.String(), time.Now().Add(time.Hour)))

		_, err := v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), sessionClaims(userID.String(), time.Now().Add(-time.Hour)))

		_, err := v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("missing expiry", func(t *testing.T) {
		t.Parallel()
		claims := sessionClaims(userID.String(), time.Now())
		delete(claims, "exp")
		token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), claims)

		_, err := v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		t.Parallel()
		claims := sessionClaims(userID.String(), time.Now().Add(time.Hour))
		claims["aud"] = "anon"
		token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), claims)

		_, err := v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		t.Parallel()
		token := sign(t, jwt.SigningMethodHS512, []byte(testSecret), sessionClaims(userID.String(), time.Now().Add(time.Hour)))

		_, err := v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		t.Parallel()
		token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), sessionClaims("service-role", time.Now().Add(time.Hour)))

		_, err := v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidUserID)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := v.Verify("not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestVerifier_Issuer(t *testing.T) {
	t.Parallel()

	v, err := auth.NewVerifier(auth.Config{JWTSecret: testSecret, Issuer: "https://project.supabase.co/auth/v1"})
	require.NoError(t, err)

	claims := sessionClaims(uuid.NewString(), time.Now().Add(time.Hour))
	claims["iss"] = "https://other.supabase.co/auth/v1"
	_, err = v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	claims["iss"] = "https://project.supabase.co/auth/v1"
	_, err = v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), claims))
	assert.NoError(t, err)
}
