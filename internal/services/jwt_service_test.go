package services

import (
	"strings"
	"testing"
	"time"

	"bank-backend/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	t.Parallel()
	codec := NewJWTService(testKey, time.Minute, time.Hour)
	user := &models.User{Username: "alice"}

	access, err := codec.GenerateAccessToken(user)
	require.NoError(t, err)
	refresh, err := codec.GenerateRefreshToken(user)
	require.NoError(t, err)

	for _, token := range []string{access, refresh} {
		username, err := codec.ExtractUsername(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", username)

		expired, err := codec.IsTokenExpired(token)
		require.NoError(t, err)
		assert.False(t, expired)
	}

	claims, err := codec.ExtractClaims(refresh)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestJWTService_SameSecondTokensDiffer(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	codec := newJWTService(testKey, time.Minute, time.Hour, clock.Now)
	user := &models.User{Username: "alice"}

	first, err := codec.GenerateAccessToken(user)
	require.NoError(t, err)
	second, err := codec.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestJWTService_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	clock := newFakeClock()
	issued := clock.Now()
	codec := newJWTService(testKey, time.Minute, time.Hour, clock.Now)

	token, err := codec.GenerateAccessToken(&models.User{Username: "alice"})
	require.NoError(t, err)

	clock.Set(issued.Add(time.Minute))
	expired, err := codec.IsTokenExpired(token)
	require.NoError(t, err)
	assert.False(t, expired, "a token is valid at its exact expiry instant")

	clock.Set(issued.Add(time.Minute + time.Second))
	expired, err = codec.IsTokenExpired(token)
	require.NoError(t, err)
	assert.True(t, expired)

	username, err := codec.ExtractUsername(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username, "extraction ignores expiry")
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	t.Parallel()
	codec := NewJWTService(testKey, time.Minute, time.Hour)
	other := NewJWTService([]byte(strings.Repeat("x", 32)), time.Minute, time.Hour)

	foreign, err := other.GenerateAccessToken(&models.User{Username: "mallory"})
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "mallory"},
	}).SignedString(testKey)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "mallory"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"wrong key": foreign,
		"wrong alg": hs512,
		"alg none":  unsigned,
		"garbage":   "not.a.token",
		"empty":     "",
		"truncated": foreign[:len(foreign)-4],
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.ExtractUsername(token)
			assert.ErrorIs(t, err, ErrMalformedToken)
			_, err = codec.IsTokenExpired(token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestExtractClaim(t *testing.T) {
	t.Parallel()
	codec := NewJWTService(testKey, time.Minute, time.Hour)
	token, err := codec.GenerateAccessToken(&models.User{Username: "alice"})
	require.NoError(t, err)

	id, err := ExtractClaim(codec, token, func(c *models.Claims) string { return c.ID })
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = ExtractClaim(codec, "bogus", func(c *models.Claims) string { return c.ID })
	assert.ErrorIs(t, err, ErrMalformedToken)
}
