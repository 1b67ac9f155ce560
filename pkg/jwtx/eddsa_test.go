package jwtx_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/headcount/pkg/jwtx"
)

const exampleIssuer = "headcount-login"

func newSigner(t *testing.T, kid string) *jwtx.EdDSASigner {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA(kid, key)
	require.NoError(t, err)
	return signer
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newSigner(t, "test-key-eddsa")
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, "test-key-eddsa", signer.KID())

	now := time.Now().UTC()
	claims := jwtx.NewAccessClaims(1, "Admin", true, 5*time.Minute, exampleIssuer, []string{"login"}, now)

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	jwks := keyset.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)

	verifier := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, []string{"login"})
	parsed, err := verifier.Verify(token)
	require.NoError(t, err)

	require.Equal(t, "1", parsed.Subject)
	require.Equal(t, "Admin", parsed.Username)
	require.True(t, parsed.Admin)
	require.ElementsMatch(t, []string{"profile:read", "profile:write", "admin:read", "admin:write"}, parsed.Scopes)
	require.NotEmpty(t, parsed.ID)

	id, err := parsed.CredentialID()
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
}

func TestEdDSAVerifyFailures(t *testing.T) {
	signer := newSigner(t, "k1")
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	now := time.Now().UTC()

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewAccessClaims(2, "User", false, time.Minute, exampleIssuer, nil, now))
		require.NoError(t, err)

		_, err = jwtx.NewVerifierEdDSA(keyset, "someone-else", nil).Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewAccessClaims(2, "User", false, time.Minute, exampleIssuer, nil, now.Add(-time.Hour)))
		require.NoError(t, err)

		_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("unknown key", func(t *testing.T) {
		other := newSigner(t, "k2")
		token, err := other.Sign(jwtx.NewAccessClaims(2, "User", false, time.Minute, exampleIssuer, nil, now))
		require.NoError(t, err)

		_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify(token)
		require.ErrorIs(t, err, jwtx.ErrNoKey)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify("not.a.jwt")
		require.Error(t, err)
	})

	t.Run("other algorithm", func(t *testing.T) {
		claims := jwtx.NewAccessClaims(2, "User", false, time.Minute, exampleIssuer, nil, now)
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tok.Header["kid"] = "k1"
		token, err := tok.SignedString([]byte("shared-secret"))
		require.NoError(t, err)

		_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify(token)
		require.Error(t, err)
	})

	t.Run("non numeric subject", func(t *testing.T) {
		claims := jwtx.NewAccessClaims(2, "User", false, time.Minute, exampleIssuer, nil, now)
		claims.Subject = "user-2"
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer, nil).Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})
}

func TestNewSignerEdDSARejects(t *testing.T) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	_, err = jwtx.NewSignerEdDSA("", key)
	require.Error(t, err)

	_, err = jwtx.NewSignerEdDSA("kid", key[:10])
	require.Error(t, err)
}
