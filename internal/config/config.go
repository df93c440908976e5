package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Values come from defaults, then the optional YAML file, then environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BodyLimit  int // Maximum request body size in bytes

	// Database
	DatabaseURL string // postgres://... or sqlite://<path>

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json

	// TLS/mTLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // CA for verifying client certs (mTLS)

	// CORS
	CORSOrigins string // Comma-separated allowed origins, empty disables CORS

	// Rate limiting
	RateLimitMax    int // Requests per window per IP, 0 disables
	RateLimitWindow time.Duration
	RedisURL        string // Shared limiter storage, in-memory when empty

	// Metrics
	MetricsEnabled bool

	// Background jobs
	StoreCheckInterval time.Duration // 0 disables the store monitor
}

// Default values
const (
	defaultServerAddr         = ":8000"
	defaultDatabaseURL        = "sqlite://database.db"
	defaultBodyLimit          = 4 * 1024 * 1024
	defaultRateLimitWindow    = time.Minute
	defaultStoreCheckInterval = 30 * time.Second
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Env:                "development",
		ServerAddr:         defaultServerAddr,
		BodyLimit:          defaultBodyLimit,
		DatabaseURL:        defaultDatabaseURL,
		LogLevel:           "info",
		LogFormat:          "text",
		RateLimitWindow:    defaultRateLimitWindow,
		MetricsEnabled:     true,
		StoreCheckInterval: defaultStoreCheckInterval,
	}
}

// Load reads configuration from .env, the YAML config file and environment variables.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	cfg := Default()

	file, err := LoadYAMLConfig(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		return nil, err
	}
	file.Apply(cfg)

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("ENV", c.Env)
	c.ServerAddr = getEnv("SERVER_ADDR", c.ServerAddr)
	c.BodyLimit = getEnvInt("BODY_LIMIT", c.BodyLimit)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.TLSEnabled = getEnvBool("TLS_ENABLED", c.TLSEnabled)
	c.TLSCertFile = getEnv("TLS_CERT_FILE", c.TLSCertFile)
	c.TLSKeyFile = getEnv("TLS_KEY_FILE", c.TLSKeyFile)
	c.TLSCAFile = getEnv("TLS_CA_FILE", c.TLSCAFile)
	c.CORSOrigins = getEnv("CORS_ORIGINS", c.CORSOrigins)
	c.RateLimitMax = getEnvInt("RATE_LIMIT_MAX", c.RateLimitMax)
	c.RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", c.RateLimitWindow)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.StoreCheckInterval = getEnvDuration("STORE_CHECK_INTERVAL", c.StoreCheckInterval)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsMTLSEnabled returns true if mTLS is configured with a CA file.
func (c *Config) IsMTLSEnabled() bool {
	return c.TLSEnabled && c.TLSCAFile != ""
}

// IsRateLimited returns true if request rate limiting is enabled.
func (c *Config) IsRateLimited() bool {
	return c.RateLimitMax > 0
}
