package cryptox_test

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/headcount/pkg/cryptox"
)

func TestGenerateAndParseEd25519Key(t *testing.T) {
	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	key, err := cryptox.ParseEd25519Key(pemBytes)
	require.NoError(t, err)
	require.Len(t, key, ed25519.PrivateKeySize)
}

func TestParseEd25519Key_Rejects(t *testing.T) {
	_, err := cryptox.ParseEd25519Key([]byte("not pem"))
	require.Error(t, err)

	_, err = cryptox.ParseEd25519Key([]byte("-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n"))
	require.ErrorContains(t, err, "unexpected PEM block")
}

func TestLoadOrCreateEd25519Key(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "signing.pem")

	first, created, err := cryptox.LoadOrCreateEd25519Key(path)
	require.NoError(t, err)
	require.True(t, created)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	second, created, err := cryptox.LoadOrCreateEd25519Key(path)
	require.NoError(t, err)
	require.False(t, created)
	require.True(t, first.Equal(second))
}

func TestFingerprint(t *testing.T) {
	a := cryptox.Fingerprint([]byte("one"))
	require.Equal(t, a, cryptox.Fingerprint([]byte("one")))
	require.NotEqual(t, a, cryptox.Fingerprint([]byte("two")))
	require.Len(t, a, 43)
}
