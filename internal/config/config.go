// Package config loads runtime configuration from the environment.
//
// Every knob has a default suitable for local development; production
// deployments override via BAKERY_* environment variables (for example
// BAKERY_RATE_LIMIT_PER_MINUTE=200).
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration for the bakeryd process.
type Config struct {
	ListenAddr  string `mapstructure:"listen_addr"`
	ServiceName string `mapstructure:"service_name"`

	// Security
	JWTSecret          string `mapstructure:"jwt_secret"`
	TokenExpiryMinutes int    `mapstructure:"token_expiry_minutes"`

	// Rate limiting
	RateLimitEnabled   bool `mapstructure:"rate_limit_enabled"`
	RateLimitPerMinute int  `mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int  `mapstructure:"rate_limit_burst"`

	// Idempotency
	IdempotencyTTLSeconds int `mapstructure:"idempotency_ttl_seconds"`
	// RedisAddr selects the Redis-backed idempotency store when non-empty.
	RedisAddr string `mapstructure:"redis_addr"`

	// Circuit breaker (payment gateway)
	BreakerFailureThreshold int `mapstructure:"breaker_failure_threshold"`
	BreakerCooldownSeconds  int `mapstructure:"breaker_cooldown_seconds"`

	// Retry policy (payment gateway)
	RetryMaxRetries       int     `mapstructure:"retry_max_retries"`
	RetryBaseDelaySeconds float64 `mapstructure:"retry_base_delay_seconds"`
	RetryMaxDelaySeconds  float64 `mapstructure:"retry_max_delay_seconds"`
	RetryMultiplier       float64 `mapstructure:"retry_multiplier"`

	// Audit trail
	AuditDBPath string `mapstructure:"audit_db_path"`
}

// Load reads configuration from BAKERY_* environment variables, falling back
// to defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BAKERY")
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("service_name", "bakeryspot")
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("token_expiry_minutes", 30)
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_per_minute", 100)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("idempotency_ttl_seconds", 86400)
	v.SetDefault("redis_addr", "")
	v.SetDefault("breaker_failure_threshold", 5)
	v.SetDefault("breaker_cooldown_seconds", 60)
	v.SetDefault("retry_max_retries", 2)
	v.SetDefault("retry_base_delay_seconds", 1.0)
	v.SetDefault("retry_max_delay_seconds", 60.0)
	v.SetDefault("retry_multiplier", 2.0)
	v.SetDefault("audit_db_path", "./data/audit.db")

	// Viper only honours AutomaticEnv for keys it knows about; binding each
	// key explicitly makes the env override work without a config file.
	for _, key := range []string{
		"listen_addr", "service_name", "jwt_secret", "token_expiry_minutes",
		"rate_limit_enabled", "rate_limit_per_minute", "rate_limit_burst",
		"idempotency_ttl_seconds", "redis_addr",
		"breaker_failure_threshold", "breaker_cooldown_seconds",
		"retry_max_retries", "retry_base_delay_seconds",
		"retry_max_delay_seconds", "retry_multiplier", "audit_db_path",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// TokenExpiry returns the access-token lifetime as a duration.
func (c *Config) TokenExpiry() time.Duration {
	return time.Duration(c.TokenExpiryMinutes) * time.Minute
}

// IdempotencyTTL returns the idempotency entry lifetime as a duration.
func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempotencyTTLSeconds) * time.Second
}

// BreakerCooldown returns the post-open cooldown as a duration.
func (c *Config) BreakerCooldown() time.Duration {
	return time.Duration(c.BreakerCooldownSeconds) * time.Second
}

// RetryBaseDelay returns the first-retry delay as a duration.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelaySeconds * float64(time.Second))
}

// RetryMaxDelay returns the delay cap as a duration.
func (c *Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.RetryMaxDelaySeconds * float64(time.Second))
}
