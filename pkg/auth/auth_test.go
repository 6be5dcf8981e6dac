package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssueAndValidate(t *testing.T) {
	v, err := NewJWTValidator(JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "loom",
		Audience:  "loom-api",
	})
	require.NoError(t, err)

	token, err := v.IssueToken("user-1", time.Hour)
	require.NoError(t, err)

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "loom", claims.Issuer)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	issuer, err := NewJWTValidator(JWTConfig{SecretKey: "secret-a"})
	require.NoError(t, err)
	verifier, err := NewJWTValidator(JWTConfig{SecretKey: "secret-b"})
	require.NoError(t, err)

	token, err := issuer.IssueToken("user-1", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	v, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)

	token, err := v.IssueToken("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = v.Validate(token)
	assert.Error(t, err)
}

func TestJWTRejectsWrongIssuer(t *testing.T) {
	issuer, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret", Issuer: "other"})
	require.NoError(t, err)
	verifier, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret", Issuer: "loom"})
	require.NoError(t, err)

	token, err := issuer.IssueToken("user-1", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTRequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}

func TestTokenBucketExhaustsAndResets(t *testing.T) {
	limiter := NewTokenBucketLimiter(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Other keys have their own bucket
	ok, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, limiter.Reset(ctx, "10.0.0.1"))
	ok, err = limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}
