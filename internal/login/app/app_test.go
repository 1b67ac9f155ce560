package app

import (
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/headcount/pkg/loginsdk"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	isolate(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	dir := t.TempDir()
	cfg.Database.DSN = filepath.Join(dir, "login.db")
	cfg.Auth.PepperFile = filepath.Join(dir, "pepper")
	cfg.Log.Level = "error"
	return cfg
}

func TestNewSeedsAndServes(t *testing.T) {
	cfg := testConfig(t)

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)

	c := loginsdk.NewClient(srv.URL)
	tok, err := c.Login(t.Context(), "Admin", "admin")
	require.NoError(t, err)

	page, err := c.WithToken(tok.AccessToken).ListCredentials(t.Context(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	ready, err := c.Health(t.Context(), true)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
}

func TestNewWithoutSeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Seed.OnStart = false

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	empty, err := application.db.Credentials().IsEmpty(t.Context())
	require.NoError(t, err)
	require.True(t, empty)
}

func TestSigningKeyFilePersists(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.SigningKeyFile = filepath.Join(t.TempDir(), "signing.pem")
	logger := NewLogger(cfg, io.Discard)

	first, err := InitSigningKeys(cfg.Auth, logger)
	require.NoError(t, err)
	second, err := InitSigningKeys(cfg.Auth, logger)
	require.NoError(t, err)
	require.Equal(t, first.Signer.KID(), second.Signer.KID())

	ephemeral, err := InitSigningKeys(AuthConfig{Issuer: "x"}, logger)
	require.NoError(t, err)
	require.NotEqual(t, first.Signer.KID(), ephemeral.Signer.KID())
	require.Len(t, ephemeral.Signer.KID(), kidLength)
}

func TestNewRejectsBadTrustedProxies(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.TrustedProxies = []string{"not-an-address"}

	_, err := New(cfg)
	require.ErrorContains(t, err, "trusted proxies")
}
