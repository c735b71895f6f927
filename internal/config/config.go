// Package config loads the application configuration from a TOML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chainlens/chainlens/pkg/blockchain"
	"github.com/chainlens/chainlens/pkg/cache"
	"github.com/chainlens/chainlens/pkg/ratelimit"
	"github.com/chainlens/chainlens/pkg/session"
)

// Backend names accepted in the cache and session sections.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"

	SessionBackendMemory = "memory"
	SessionBackendMongo  = "mongo"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Upstream  UpstreamConfig  `toml:"upstream"`
	RateLimit RateLimitConfig `toml:"ratelimit"`
	Cache     CacheConfig     `toml:"cache"`
	Sessions  SessionsConfig  `toml:"sessions"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// UpstreamConfig configures the ledger API client.
type UpstreamConfig struct {
	BaseURL                   string `toml:"base_url"`
	RequestTimeoutSeconds     int    `toml:"request_timeout_seconds"`
	RetryAfterFallbackSeconds int    `toml:"retry_after_fallback_seconds"`
}

// RateLimitConfig configures the request pacing budget.
type RateLimitConfig struct {
	MinDelaySeconds      int `toml:"min_delay_seconds"`
	MaxRequestsPerWindow int `toml:"max_requests_per_window"`
	WindowSeconds        int `toml:"window_seconds"`
}

// CacheConfig configures the page cache.
type CacheConfig struct {
	Backend    string      `toml:"backend"` // file, redis, none
	TTLSeconds int         `toml:"ttl_seconds"`
	Dir        string      `toml:"dir"` // file backend only
	Redis      RedisConfig `toml:"redis"`
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// SessionsConfig configures exploration session storage.
type SessionsConfig struct {
	Backend   string      `toml:"backend"` // memory, mongo
	TTLHours  int         `toml:"ttl_hours"`
	PageLimit int         `toml:"page_limit"`
	Mongo     MongoConfig `toml:"mongo"`
}

// MongoConfig configures the MongoDB session backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the configuration used when no file or overrides are
// present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen: ":8080",
		},
		Upstream: UpstreamConfig{
			BaseURL:                   blockchain.DefaultBaseURL,
			RequestTimeoutSeconds:     int(blockchain.DefaultRequestTimeout / time.Second),
			RetryAfterFallbackSeconds: int(blockchain.DefaultRetryAfterFallback / time.Second),
		},
		RateLimit: RateLimitConfig{
			MinDelaySeconds:      int(ratelimit.DefaultMinDelay / time.Second),
			MaxRequestsPerWindow: ratelimit.DefaultMaxPerWindow,
			WindowSeconds:        int(ratelimit.DefaultWindowLength / time.Second),
		},
		Cache: CacheConfig{
			Backend:    CacheBackendFile,
			TTLSeconds: int(blockchain.DefaultCacheTTL / time.Second),
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Sessions: SessionsConfig{
			Backend:   SessionBackendMemory,
			TTLHours:  int(session.DefaultTTL / time.Hour),
			PageLimit: blockchain.DefaultPageLimit,
			Mongo: MongoConfig{
				URI: "mongodb://localhost:27017",
			},
		},
	}
}

// Load reads the configuration from path, falling back to defaults for
// anything unset, then applies CHAINLENS_* environment overrides. An
// empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend names and numeric ranges.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendNone:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Sessions.Backend {
	case SessionBackendMemory, SessionBackendMongo:
	default:
		return fmt.Errorf("unknown session backend %q", c.Sessions.Backend)
	}
	if c.RateLimit.MinDelaySeconds < 0 {
		return fmt.Errorf("min_delay_seconds must not be negative")
	}
	if c.RateLimit.MaxRequestsPerWindow < 0 {
		return fmt.Errorf("max_requests_per_window must not be negative")
	}
	if c.Sessions.PageLimit < 0 || c.Sessions.PageLimit > blockchain.MaxPageLimit {
		return fmt.Errorf("page_limit must be between 0 and %d", blockchain.MaxPageLimit)
	}
	return nil
}

// GovernorConfig converts the rate limit section for [ratelimit.New].
func (c *Config) GovernorConfig() ratelimit.Config {
	return ratelimit.Config{
		MinDelay:     time.Duration(c.RateLimit.MinDelaySeconds) * time.Second,
		MaxPerWindow: c.RateLimit.MaxRequestsPerWindow,
		Window:       time.Duration(c.RateLimit.WindowSeconds) * time.Second,
	}
}

// ClientConfig converts the upstream section for [blockchain.NewClient].
func (c *Config) ClientConfig() blockchain.Config {
	return blockchain.Config{
		BaseURL:            c.Upstream.BaseURL,
		RequestTimeout:     time.Duration(c.Upstream.RequestTimeoutSeconds) * time.Second,
		RetryAfterFallback: time.Duration(c.Upstream.RetryAfterFallbackSeconds) * time.Second,
		CacheTTL:           time.Duration(c.Cache.TTLSeconds) * time.Second,
	}
}

// RedisCacheConfig converts the cache section for [cache.NewRedisCache].
func (c *Config) RedisCacheConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     c.Cache.Redis.Addr,
		Password: c.Cache.Redis.Password,
		DB:       c.Cache.Redis.DB,
		Prefix:   c.Cache.Redis.Prefix,
	}
}

// MongoSessionConfig converts the sessions section for
// [session.NewMongoStore].
func (c *Config) MongoSessionConfig() session.MongoConfig {
	return session.MongoConfig{
		URI:        c.Sessions.Mongo.URI,
		Database:   c.Sessions.Mongo.Database,
		Collection: c.Sessions.Mongo.Collection,
	}
}

// SessionTTL returns the configured session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Sessions.TTLHours) * time.Hour
}

// applyEnv overrides individual settings from the environment.
// Variables take precedence over both defaults and the config file.
func (c *Config) applyEnv() {
	setString(&c.Server.Listen, "CHAINLENS_LISTEN")
	setString(&c.Upstream.BaseURL, "CHAINLENS_BASE_URL")
	setInt(&c.Upstream.RequestTimeoutSeconds, "CHAINLENS_REQUEST_TIMEOUT_SECONDS")
	setInt(&c.Upstream.RetryAfterFallbackSeconds, "CHAINLENS_RETRY_AFTER_FALLBACK_SECONDS")
	setInt(&c.RateLimit.MinDelaySeconds, "CHAINLENS_MIN_DELAY_SECONDS")
	setInt(&c.RateLimit.MaxRequestsPerWindow, "CHAINLENS_MAX_REQUESTS_PER_WINDOW")
	setInt(&c.RateLimit.WindowSeconds, "CHAINLENS_WINDOW_SECONDS")
	setString(&c.Cache.Backend, "CHAINLENS_CACHE_BACKEND")
	setInt(&c.Cache.TTLSeconds, "CHAINLENS_CACHE_TTL_SECONDS")
	setString(&c.Cache.Dir, "CHAINLENS_CACHE_DIR")
	setString(&c.Cache.Redis.Addr, "CHAINLENS_REDIS_ADDR")
	setString(&c.Cache.Redis.Password, "CHAINLENS_REDIS_PASSWORD")
	setString(&c.Sessions.Backend, "CHAINLENS_SESSION_BACKEND")
	setString(&c.Sessions.Mongo.URI, "CHAINLENS_MONGO_URI")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
