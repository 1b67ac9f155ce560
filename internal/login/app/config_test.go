package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/headcount/pkg/httpx"
	"github.com/aussiebroadwan/headcount/pkg/jwtx"
)

// isolate keeps a login.yaml in the working directory out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "headcount.db", cfg.Database.DSN)
	require.True(t, cfg.Seed.OnStart)
	require.Equal(t, "headcount-login", cfg.Auth.Issuer)
	require.Equal(t, []string{"headcount"}, cfg.Auth.Audience)
	require.Equal(t, jwtx.DefaultAccessTokenTTL, cfg.Auth.AccessTTL)
	require.Equal(t, 8080, cfg.HTTP.Port)
	require.Equal(t, 10*time.Second, cfg.HTTP.ShutdownGracePeriod)
	require.Equal(t, httpx.StrictLimit, cfg.HTTP.RateLimits.Login)
	require.Equal(t, httpx.AccountLimit, cfg.HTTP.RateLimits.LoginAccount)
	require.Equal(t, httpx.PublicLimit, cfg.HTTP.RateLimits.Public)
	require.Empty(t, cfg.HTTP.TrustedProxies)
}

func TestLoadConfigSeedOnStartByEnv(t *testing.T) {
	isolate(t)

	t.Setenv("LOGIN_ENV", "prod")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.False(t, cfg.Seed.OnStart, "prod does not seed fixture accounts unless asked")

	t.Setenv("LOGIN_SEED_ON_START", "true")
	cfg, err = LoadConfig("")
	require.NoError(t, err)
	require.True(t, cfg.Seed.OnStart)
}

func TestLoadConfigFileEnvAndFlags(t *testing.T) {
	isolate(t)

	file := filepath.Join(t.TempDir(), "login.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
database:
  driver: postgres
  dsn: postgres://login@db/headcount
auth:
  access_ttl: 5m
http:
  port: 9000
  trusted_proxies:
    - 10.0.0.0/8
    - 192.168.1.1
  rate_limits:
    login:
      requests: 3
      window: 30s
      burst: 1
`), 0o600))

	t.Setenv("LOGIN_HTTP_PORT", "9100")
	t.Setenv("LOGIN_SEED_ON_START", "false")

	cfg, err := LoadConfig(file, func(v *viper.Viper) error {
		v.Set("log.level", "debug")
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "postgres://login@db/headcount", cfg.Database.DSN)
	require.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL)
	require.Equal(t, 9100, cfg.HTTP.Port, "env beats file")
	require.False(t, cfg.Seed.OnStart)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, httpx.RateLimitConfig{RequestsPerWindow: 3, Window: 30 * time.Second, Burst: 1}, cfg.HTTP.RateLimits.Login)
	require.Equal(t, httpx.ModerateLimit, cfg.HTTP.RateLimits.Admin)
	require.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.HTTP.TrustedProxies)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	isolate(t)

	base, err := LoadConfig("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "database.driver"},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"empty issuer", func(c *Config) { c.Auth.Issuer = "" }, "auth.issuer"},
		{"zero ttl", func(c *Config) { c.Auth.AccessTTL = 0 }, "auth.access_ttl"},
		{"port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"rate limit", func(c *Config) { c.HTTP.RateLimits.Self.Burst = 0 }, "http.rate_limits.self"},
		{"account rate limit", func(c *Config) { c.HTTP.RateLimits.LoginAccount.Window = 0 }, "http.rate_limits.login_account"},
		{"trusted proxy", func(c *Config) { c.HTTP.TrustedProxies = []string{"10.0.0.0/33"} }, "http.trusted_proxies"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
