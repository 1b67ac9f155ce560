package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWK_PEM_Ed25519(t *testing.T) {
	publicKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	jwk := NewEd25519JWK("test-key-id", "sig", "EdDSA", publicKey)

	pemStr, err := jwk.PEM()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(pemStr, "-----BEGIN PUBLIC KEY-----"))

	block, _ := pem.Decode([]byte(pemStr))
	require.NotNil(t, block)

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	require.NoError(t, err)
	require.Equal(t, publicKey, parsed.(ed25519.PublicKey))
}

func TestJWK_PEM_Rejects(t *testing.T) {
	_, err := JWK{Kty: "RSA", Kid: "k"}.PEM()
	require.Error(t, err)

	_, err = JWK{Kty: "OKP", Crv: "X25519", Kid: "k"}.PEM()
	require.Error(t, err)

	_, err = JWK{Kty: "OKP", Crv: "Ed25519", Kid: "k", X: "c2hvcnQ"}.PEM()
	require.ErrorContains(t, err, "size")
}

func TestKeySetResetAndReplace(t *testing.T) {
	pubA, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	pubB, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	ks := NewKeySet()
	require.False(t, ks.IsReady())

	require.NoError(t, ks.AddJWK(NewEd25519JWK("a", "sig", "EdDSA", pubA)))
	require.NoError(t, ks.AddJWK(NewEd25519JWK("a", "sig", "EdDSA", pubB)))
	require.Len(t, ks.PublicJWKS().Keys, 1)

	got, err := ks.Get("a")
	require.NoError(t, err)
	require.Equal(t, pubB, got)

	require.NoError(t, ks.ResetFromJWKS(JWKS{Keys: []JWK{NewEd25519JWK("b", "sig", "EdDSA", pubA)}}))
	_, err = ks.Get("a")
	require.ErrorIs(t, err, ErrNoKey)
	require.True(t, ks.IsReady())
}
