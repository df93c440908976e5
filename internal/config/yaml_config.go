package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Every field is optional; unset fields keep their defaults.
type YAMLConfig struct {
	Env      string         `yaml:"env"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Limits   LimitsConfig   `yaml:"limits"`
	Metrics  *MetricsConfig `yaml:"metrics"`
	Jobs     JobsConfig     `yaml:"jobs"`
}

// ServerConfig defines listener settings.
type ServerConfig struct {
	Addr        string    `yaml:"addr"`
	BodyLimit   int       `yaml:"body_limit"`
	CORSOrigins string    `yaml:"cors_origins"`
	TLS         TLSConfig `yaml:"tls"`
}

// TLSConfig defines certificate locations.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`
}

// DatabaseConfig defines the store location.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// LoggingConfig defines the log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LimitsConfig defines request rate limiting.
type LimitsConfig struct {
	RateLimitMax    int           `yaml:"rate_limit_max"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
	RedisURL        string        `yaml:"redis_url"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// JobsConfig defines background job intervals.
type JobsConfig struct {
	StoreCheckInterval time.Duration `yaml:"store_check_interval"`
}

// LoadYAMLConfig loads the YAML configuration file at path.
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Apply copies every set field onto cfg.
func (y *YAMLConfig) Apply(cfg *Config) {
	if y == nil {
		return
	}

	setString(&cfg.Env, y.Env)
	setString(&cfg.ServerAddr, y.Server.Addr)
	if y.Server.BodyLimit > 0 {
		cfg.BodyLimit = y.Server.BodyLimit
	}
	setString(&cfg.CORSOrigins, y.Server.CORSOrigins)
	if y.Server.TLS.Enabled {
		cfg.TLSEnabled = true
	}
	setString(&cfg.TLSCertFile, y.Server.TLS.CertFile)
	setString(&cfg.TLSKeyFile, y.Server.TLS.KeyFile)
	setString(&cfg.TLSCAFile, y.Server.TLS.CAFile)

	setString(&cfg.DatabaseURL, y.Database.URL)

	setString(&cfg.LogLevel, y.Logging.Level)
	setString(&cfg.LogFormat, y.Logging.Format)

	if y.Limits.RateLimitMax > 0 {
		cfg.RateLimitMax = y.Limits.RateLimitMax
	}
	if y.Limits.RateLimitWindow > 0 {
		cfg.RateLimitWindow = y.Limits.RateLimitWindow
	}
	setString(&cfg.RedisURL, y.Limits.RedisURL)

	if y.Metrics != nil {
		cfg.MetricsEnabled = y.Metrics.Enabled
	}

	if y.Jobs.StoreCheckInterval > 0 {
		cfg.StoreCheckInterval = y.Jobs.StoreCheckInterval
	}
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
