package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. CATALOG_DATABASE_URL for database.url.
const EnvPrefix = "CATALOG"

// keys lists every configuration key so that environment variables are
// picked up by Unmarshal even when no file or default mentions them.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.request_timeout_seconds",
	"server.cors_allowed_origins",
	"server.auth_rate_per_minute",
	"server.auth_rate_burst",
	"server.trust_proxy_headers",
	"database.url",
	"database.max_open_conns",
	"database.max_idle_conns",
	"database.conn_max_lifetime_minutes",
	"auth.jwt_secret",
	"auth.access_token_lifetime_minutes",
	"auth.refresh_token_lifetime_minutes",
	"auth.bcrypt_cost",
	"auth.hash_workers",
	"auth.admin_user_ids",
	"auth.revocation_backend",
	"redis.url",
	"events.nats_url",
	"events.subject_prefix",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.auth_rate_per_minute", 20)
	v.SetDefault("server.auth_rate_burst", 5)
	v.SetDefault("server.trust_proxy_headers", false)

	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("auth.access_token_lifetime_minutes", 15)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 30*24*60)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.hash_workers", 4)
	v.SetDefault("auth.admin_user_ids", []int64{1})
	v.SetDefault("auth.revocation_backend", RevocationBackendPostgres)

	v.SetDefault("events.subject_prefix", "catalog")
}

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first (without overriding
// variables that are already set), then config.yaml from . or ./config.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags plus the cross-section rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Auth.RevocationBackend == RevocationBackendRedis && c.Redis.URL == "" {
		return fmt.Errorf("config validation failed: redis.url is required when auth.revocation_backend is %q",
			RevocationBackendRedis)
	}
	return nil
}
