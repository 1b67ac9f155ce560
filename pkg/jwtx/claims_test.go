package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/headcount/pkg/jwtx"
)

func TestScopesFor(t *testing.T) {
	require.Equal(t, []string{"profile:read", "profile:write"}, jwtx.ScopesFor(false))
	require.Equal(t, []string{"profile:read", "profile:write", "admin:read", "admin:write"}, jwtx.ScopesFor(true))
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: "headcount-login"}}

	require.NoError(t, c.ValidateIssuer("headcount-login"))
	require.NoError(t, c.ValidateIssuer(""))
	require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Audience: []string{"login", "counter"}}}

	require.NoError(t, c.ValidateAudience([]string{"login"}))
	require.NoError(t, c.ValidateAudience([]string{"foo", "counter"}))
	require.NoError(t, c.ValidateAudience(nil))
	require.ErrorIs(t, c.ValidateAudience([]string{"admin"}), jwtx.ErrAudience)
}

func TestValidateExpiryWithLeeway(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid with leeway", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second))}}
		require.NoError(t, c.ValidateExpiryWithLeeway(now, 30*time.Second))
	})

	t.Run("expired beyond leeway", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-2 * time.Minute))}}
		require.ErrorIs(t, c.ValidateExpiryWithLeeway(now, 30*time.Second), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{NotBefore: jwt.NewNumericDate(now.Add(time.Minute))}}
		require.ErrorIs(t, c.ValidateExpiryWithLeeway(now, 0), jwtx.ErrNotYetValid)
	})

	t.Run("no exp or nbf", func(t *testing.T) {
		require.NoError(t, (&jwtx.Claims{}).ValidateExpiryWithLeeway(now, 0))
	})
}

func TestHasScope(t *testing.T) {
	c := jwtx.NewAccessClaims(2, "User", false, time.Minute, "", nil, time.Now())
	require.True(t, c.HasScope(jwtx.ScopeProfileRead))
	require.False(t, c.HasScope(jwtx.ScopeAdminWrite))
}
