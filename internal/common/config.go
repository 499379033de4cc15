// Package common provides shared utilities for Milhas
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Milhas
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Cache       CacheConfig    `toml:"cache"`
	Sources     SourcesConfig  `toml:"sources"`
	Advisory    AdvisoryConfig `toml:"advisory"`
	Auth        AuthConfig     `toml:"auth"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the portfolio database location.
type StorageConfig struct {
	Path string `toml:"path"` // SQLite file holding the operations table
}

// CacheConfig selects the TTL cache backend for scraped data.
type CacheConfig struct {
	Backend       string `toml:"backend"` // "memory" or "redis"
	RedisAddr     string `toml:"redis_addr"`
	RedisDB       int    `toml:"redis_db"`
	RedisPassword string `toml:"redis_password"`
	KeyPrefix     string `toml:"key_prefix"`
}

// IsRedis returns true when the redis backend is selected.
func (c *CacheConfig) IsRedis() bool {
	return strings.EqualFold(strings.TrimSpace(c.Backend), "redis")
}

// SourcesConfig holds the scrape targets.
type SourcesConfig struct {
	Quotes        SourceConfig `toml:"quotes"`
	Opportunities SourceConfig `toml:"opportunities"`
}

// SourceConfig holds one scraped page's fetch settings
type SourceConfig struct {
	URL       string `toml:"url"`
	Timeout   string `toml:"timeout"`
	TTL       string `toml:"ttl"`
	UserAgent string `toml:"user_agent"`
	RateLimit int    `toml:"rate_limit"` // requests per second
}

// GetTimeout parses and returns the timeout duration
func (c *SourceConfig) GetTimeout(fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetTTL parses and returns the cache TTL
func (c *SourceConfig) GetTTL(fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// AdvisoryConfig holds Gemini API configuration
type AdvisoryConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AdvisoryConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// AuthConfig holds bearer token configuration. With a JWTSecret every route
// except health and version needs a valid token and the X-Milhas-User header
// is ignored. Without one users are resolved from that header.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/milhas_portfolio.db",
		},
		Cache: CacheConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
			KeyPrefix: "milhas:",
		},
		Sources: SourcesConfig{
			Quotes: SourceConfig{
				URL:       "https://www.melhorescartoes.com.br/cotacao-milhas",
				Timeout:   "8s",
				TTL:       FreshnessQuotes.String(),
				UserAgent: DefaultUserAgent,
				RateLimit: 1,
			},
			Opportunities: SourceConfig{
				URL:       "https://www.melhorescartoes.com.br/category/programas-de-fidelidade",
				Timeout:   "5s",
				TTL:       FreshnessOpportunities.String(),
				UserAgent: DefaultUserAgent,
				RateLimit: 1,
			},
		},
		Advisory: AdvisoryConfig{
			Model:   "gemini-2.5-flash",
			Timeout: "60s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MILHAS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("MILHAS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("MILHAS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("MILHAS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("MILHAS_DB_PATH"); path != "" {
		config.Storage.Path = path
	}

	if backend := os.Getenv("MILHAS_CACHE_BACKEND"); backend != "" {
		config.Cache.Backend = backend
	}
	if addr := os.Getenv("MILHAS_REDIS_ADDR"); addr != "" {
		config.Cache.RedisAddr = addr
	}

	if u := os.Getenv("MILHAS_QUOTES_URL"); u != "" {
		config.Sources.Quotes.URL = u
	}
	if u := os.Getenv("MILHAS_OPPORTUNITIES_URL"); u != "" {
		config.Sources.Opportunities.URL = u
	}

	if v := os.Getenv("MILHAS_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}

	// First non-empty key wins
	for _, name := range []string{"GEMINI_API_KEY", "MILHAS_GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Advisory.APIKey = v
			break
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
