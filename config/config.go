// Package config loads the server configuration from an optional YAML file
// with RINKSIDE_-prefixed environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NHL        NHLConfig        `mapstructure:"nhl"`
	Polymarket PolymarketConfig `mapstructure:"polymarket"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	GinMode    string `mapstructure:"gin_mode"`
}

// AuthConfig holds token issuance configuration. The key file carries a
// PEM-encoded EC private key used for ES256 signing.
type AuthConfig struct {
	KeyFile   string        `mapstructure:"key_file"`
	NonceTTL  time.Duration `mapstructure:"nonce_ttl"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

// RedisConfig holds the Redis connection for the nonce/revocation store
// and the event stream. With Enabled false the server runs on the
// in-memory store and a no-op publisher.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NHLConfig holds the NHL upstream configuration.
type NHLConfig struct {
	WebBaseURL   string        `mapstructure:"web_base_url"`
	StatsBaseURL string        `mapstructure:"stats_base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// PolymarketConfig holds the Gamma API configuration.
type PolymarketConfig struct {
	GammaAPIURL string        `mapstructure:"gamma_api_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	RateBurst   int           `mapstructure:"rate_burst"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file and the environment.
// An empty path loads defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RINKSIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8000")
	v.SetDefault("server.gin_mode", "release")

	v.SetDefault("auth.key_file", "")
	v.SetDefault("auth.nonce_ttl", "5m")
	v.SetDefault("auth.access_ttl", "24h")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("nhl.web_base_url", "https://api-web.nhle.com/v1")
	v.SetDefault("nhl.stats_base_url", "https://api.nhle.com/stats/rest/en")
	v.SetDefault("nhl.timeout", "30s")
	v.SetDefault("nhl.rate_limit", 10.0)
	v.SetDefault("nhl.rate_burst", 5)

	v.SetDefault("polymarket.gamma_api_url", "https://gamma-api.polymarket.com")
	v.SetDefault("polymarket.timeout", "10s")
	v.SetDefault("polymarket.rate_limit", 10.0)
	v.SetDefault("polymarket.rate_burst", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	validGinModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validGinModes[c.Server.GinMode] {
		return fmt.Errorf("server.gin_mode must be one of: debug, release, test")
	}

	if c.Auth.NonceTTL < time.Minute {
		return fmt.Errorf("auth.nonce_ttl must be at least 1 minute")
	}
	if c.Auth.AccessTTL < time.Minute {
		return fmt.Errorf("auth.access_ttl must be at least 1 minute")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}

	if c.NHL.WebBaseURL == "" {
		return fmt.Errorf("nhl.web_base_url is required")
	}
	if c.NHL.StatsBaseURL == "" {
		return fmt.Errorf("nhl.stats_base_url is required")
	}
	if c.NHL.RateLimit <= 0 {
		return fmt.Errorf("nhl.rate_limit must be positive")
	}

	if c.Polymarket.GammaAPIURL == "" {
		return fmt.Errorf("polymarket.gamma_api_url is required")
	}
	if c.Polymarket.RateLimit <= 0 {
		return fmt.Errorf("polymarket.rate_limit must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}
	return nil
}
