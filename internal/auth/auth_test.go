package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{SecretKey: "test-secret", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	return svc
}

func TestNewService(t *testing.T) {
	_, err := NewService(Config{})
	assert.Error(t, err)

	_, err = NewService(Config{SecretKey: "s", Algorithm: "RS256"})
	assert.Error(t, err)

	svc, err := NewService(Config{SecretKey: "s", Algorithm: "HS512"})
	require.NoError(t, err)
	assert.Equal(t, DefaultAccessTTL, svc.cfg.AccessTTL)
	assert.Equal(t, DefaultRefreshTTL, svc.cfg.RefreshTTL)
	assert.Equal(t, DefaultResetTTL, svc.cfg.ResetTTL)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.CreateAccessToken("Tom")
	require.NoError(t, err)

	name, err := svc.DecodeAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "Tom", name)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, ScopeAccess, claims.Scope)
	assert.Equal(t, "Tom", claims.Subject)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, DefaultAccessTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestScopesAreNotInterchangeable(t *testing.T) {
	svc := newTestService(t)

	access, err := svc.CreateAccessToken("Tom")
	require.NoError(t, err)
	refresh, err := svc.CreateRefreshToken("Tom")
	require.NoError(t, err)
	reset, err := svc.CreateResetToken("Tom")
	require.NoError(t, err)

	_, err = svc.DecodeRefreshToken(access)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.DecodeAccessToken(refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.NameFromResetToken(access)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.DecodeAccessToken(reset)
	assert.ErrorIs(t, err, ErrUnauthorized)

	name, err := svc.DecodeRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "Tom", name)

	name, err = svc.NameFromResetToken(reset)
	require.NoError(t, err)
	assert.Equal(t, "Tom", name)
}

func TestExpiredToken(t *testing.T) {
	svc := newTestService(t)
	issued := time.Now().Add(-8 * 24 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.CreateRefreshToken("Tom")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.DecodeRefreshToken(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenFromOtherSecret(t *testing.T) {
	svc := newTestService(t)
	other, err := NewService(Config{SecretKey: "other-secret"})
	require.NoError(t, err)

	token, err := other.CreateAccessToken("Tom")
	require.NoError(t, err)

	_, err = svc.DecodeAccessToken(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.DecodeAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAlgorithmMismatch(t *testing.T) {
	hs512, err := NewService(Config{SecretKey: "test-secret", Algorithm: "HS512"})
	require.NoError(t, err)
	token, err := hs512.CreateAccessToken("Tom")
	require.NoError(t, err)

	_, err = newTestService(t).DecodeAccessToken(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPasswordHashing(t *testing.T) {
	svc := newTestService(t)

	hash, err := svc.HashPassword("whiskers123")
	require.NoError(t, err)
	assert.NotEqual(t, "whiskers123", hash)

	assert.True(t, svc.VerifyPassword("whiskers123", hash))
	assert.False(t, svc.VerifyPassword("wrong-password", hash))
	assert.False(t, svc.VerifyPassword("whiskers123", "not-a-hash"))
}
