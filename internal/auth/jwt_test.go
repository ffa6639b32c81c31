package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dishpatch/dishpatch/internal/auth"
)

func newTestService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-signing-key-at-least-32-chars!!",
		Issuer:     "https://api.dishpatch.test",
		Audience:   "dishpatch-api",
	})
}

func TestGenerateServiceToken_RoundTrip(t *testing.T) {
	svc := newTestService()

	token, expiresAt, err := svc.GenerateServiceToken("ops-cli", auth.ScopeAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(auth.ServiceTokenExpiry), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops-cli", claims.Subject)
	assert.True(t, claims.HasScope(auth.ScopeAdmin))
}

func TestValidateToken_RejectsWrongKey(t *testing.T) {
	svc := newTestService()
	other := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "a-completely-different-signing-key!!",
		Issuer:     "https://api.dishpatch.test",
		Audience:   "dishpatch-api",
	})

	token, _, err := svc.GenerateServiceToken("ops-cli", auth.ScopeAdmin)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_RejectsWrongAudience(t *testing.T) {
	svc := newTestService()
	other := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-signing-key-at-least-32-chars!!",
		Issuer:     "https://api.dishpatch.test",
		Audience:   "some-other-service",
	})

	token, _, err := svc.GenerateServiceToken("ops-cli", auth.ScopeAdmin)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestValidateToken_RejectsGarbage(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRequireScope(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.GenerateServiceToken("refresh-worker", "worker")
	require.NoError(t, err)

	_, err = svc.RequireScope(token, "worker")
	assert.NoError(t, err)

	_, err = svc.RequireScope(token, auth.ScopeAdmin)
	assert.ErrorIs(t, err, auth.ErrInsufficientScope)
}

func TestHasScope_MultipleScopes(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.GenerateServiceToken("ops-cli", auth.ScopeAdmin, "worker")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, claims.HasScope(auth.ScopeAdmin))
	assert.True(t, claims.HasScope("worker"))
	assert.False(t, claims.HasScope("superuser"))
}
