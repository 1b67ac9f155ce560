package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	loginhttp "github.com/aussiebroadwan/headcount/internal/login/http"
	"github.com/aussiebroadwan/headcount/internal/login/store/drivers"
	"github.com/aussiebroadwan/headcount/pkg/httpx"
	"github.com/aussiebroadwan/headcount/pkg/jwtx"
)

// EnvPrefix prefixes every environment override, e.g. LOGIN_HTTP_PORT.
const EnvPrefix = "LOGIN"

type Config struct {
	Env string    `mapstructure:"env"` // dev, staging, prod
	Log LogConfig `mapstructure:"log"`

	Database DatabaseConfig `mapstructure:"database"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Auth     AuthConfig     `mapstructure:"auth"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, mysql, postgres
	DSN    string `mapstructure:"dsn"`    // a file path for sqlite
}

type SeedConfig struct {
	OnStart bool   `mapstructure:"on_start"` // insert missing seed accounts when serving; off by default in prod
	File    string `mapstructure:"file"`     // replaces the built-in fixture
}

type AuthConfig struct {
	Issuer         string        `mapstructure:"issuer"`
	Audience       []string      `mapstructure:"audience"`
	AccessTTL      time.Duration `mapstructure:"access_ttl"`
	SigningKeyFile string        `mapstructure:"signing_key_file"` // empty means an ephemeral key
	PepperFile     string        `mapstructure:"pepper_file"`
}

type HTTPConfig struct {
	Port                int              `mapstructure:"port"`
	ShutdownGracePeriod time.Duration    `mapstructure:"shutdown_grace_period"`
	RateLimits          RateLimitsConfig `mapstructure:"rate_limits"`

	// TrustedProxies lists the CIDRs or addresses whose X-Forwarded-For and
	// X-Real-IP headers are believed. Empty means rate limits key on the
	// socket peer only.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type RateLimitsConfig struct {
	Login        httpx.RateLimitConfig `mapstructure:"login"`
	LoginAccount httpx.RateLimitConfig `mapstructure:"login_account"`
	Self         httpx.RateLimitConfig `mapstructure:"self"`
	Admin        httpx.RateLimitConfig `mapstructure:"admin"`
	Public       httpx.RateLimitConfig `mapstructure:"public"`
}

func (c RateLimitsConfig) byName() map[string]httpx.RateLimitConfig {
	return map[string]httpx.RateLimitConfig{
		"login":         c.Login,
		"login_account": c.LoginAccount,
		"self":          c.Self,
		"admin":         c.Admin,
		"public":        c.Public,
	}
}

func (c RateLimitsConfig) routerLimits() loginhttp.RateLimits {
	return loginhttp.RateLimits{
		Login:        c.Login,
		LoginAccount: c.LoginAccount,
		Self:         c.Self,
		Admin:        c.Admin,
		Public:       c.Public,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "headcount.db")

	v.SetDefault("seed.file", "")

	v.SetDefault("auth.issuer", "headcount-login")
	v.SetDefault("auth.audience", []string{"headcount"})
	v.SetDefault("auth.access_ttl", jwtx.DefaultAccessTokenTTL)
	v.SetDefault("auth.signing_key_file", "")
	v.SetDefault("auth.pepper_file", "pepper")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.shutdown_grace_period", 10*time.Second)
	v.SetDefault("http.trusted_proxies", []string{})

	defaults := RateLimitsConfig{
		Login:        loginhttp.DefaultRateLimits.Login,
		LoginAccount: loginhttp.DefaultRateLimits.LoginAccount,
		Self:         loginhttp.DefaultRateLimits.Self,
		Admin:        loginhttp.DefaultRateLimits.Admin,
		Public:       loginhttp.DefaultRateLimits.Public,
	}
	for name, l := range defaults.byName() {
		prefix := "http.rate_limits." + name + "."
		v.SetDefault(prefix+"requests", l.RequestsPerWindow)
		v.SetDefault(prefix+"window", l.Window)
		v.SetDefault(prefix+"burst", l.Burst)
	}
}

// LoadConfig reads defaults, then the optional YAML file, then LOGIN_*
// environment variables. bind hooks run last so command-line flags win.
// A missing file is an error only when file was given explicitly.
func LoadConfig(file string, bind ...func(*viper.Viper) error) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("login")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/headcount/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	for _, b := range bind {
		if err := b(v); err != nil {
			return Config{}, err
		}
	}

	// The fixture passwords are public, so prod only seeds when asked to.
	seedOnStart := v.GetString("env") != "prod"
	if v.IsSet("seed.on_start") {
		seedOnStart = v.GetBool("seed.on_start")
	}
	v.Set("seed.on_start", seedOnStart)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	if !drivers.Known(c.Database.Driver) {
		errs = append(errs, fmt.Errorf("database.driver: unknown driver %q (want one of %s)",
			c.Database.Driver, strings.Join(drivers.Names, ", ")))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn: required"))
	}
	if c.Auth.Issuer == "" {
		errs = append(errs, errors.New("auth.issuer: required"))
	}
	if c.Auth.AccessTTL <= 0 {
		errs = append(errs, errors.New("auth.access_ttl: must be positive"))
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port: %d out of range", c.HTTP.Port))
	}

	for name, l := range c.HTTP.RateLimits.byName() {
		if !l.Valid() {
			errs = append(errs, fmt.Errorf("http.rate_limits.%s: requests, window and burst must be positive", name))
		}
	}
	if _, err := httpx.ParseTrustedProxies(c.HTTP.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("http.trusted_proxies: %w", err))
	}

	return errors.Join(errs...)
}
