package config

import "time"

// Revocation backends accepted by AuthConfig.RevocationBackend.
const (
	RevocationBackendPostgres = "postgres"
	RevocationBackendRedis    = "redis"
	RevocationBackendMemory   = "memory"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Events   EventsConfig   `mapstructure:"events"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// RequestTimeoutSeconds bounds every request, including its persistence calls.
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	CORSAllowedOrigins    []string `mapstructure:"cors_allowed_origins"`

	// AuthRatePerMinute and AuthRateBurst limit /register and /login per client IP.
	AuthRatePerMinute int `mapstructure:"auth_rate_per_minute" validate:"required,gt=0"`
	AuthRateBurst     int `mapstructure:"auth_rate_burst" validate:"required,gt=0"`

	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`
}

// RequestTimeout returns the configured request timeout as a duration.
func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string  `mapstructure:"jwt_secret" validate:"required,min=32"`
	AccessTokenLifetimeMinutes  int     `mapstructure:"access_token_lifetime_minutes" validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int     `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gtfield=AccessTokenLifetimeMinutes"`
	BCryptCost                  int     `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
	HashWorkers                 int     `mapstructure:"hash_workers" validate:"required,gt=0"`
	AdminUserIDs                []int64 `mapstructure:"admin_user_ids"`
	RevocationBackend           string  `mapstructure:"revocation_backend" validate:"required,oneof=postgres redis memory"`
}

// RedisConfig configures the Redis client used by the redis revocation backend.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// EventsConfig configures catalog event publishing. Publishing to NATS is
// disabled when NATSURL is empty.
type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url" validate:"omitempty,url"`
	SubjectPrefix string `mapstructure:"subject_prefix" validate:"required"`
}
