// Package config loads service configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the time report service
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	NATS     NATSConfig     `mapstructure:"nats" yaml:"nats"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
	Notify   NotifyConfig   `mapstructure:"notify" yaml:"notify"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	CORS     CORSConfig     `mapstructure:"cors" yaml:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port" yaml:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host       string `mapstructure:"host" yaml:"host"`
	Port       int    `mapstructure:"port" yaml:"port"`
	User       string `mapstructure:"user" yaml:"user"`
	Password   string `mapstructure:"password" yaml:"-"`
	Database   string `mapstructure:"database" yaml:"database"`
	SSLMode    string `mapstructure:"sslmode" yaml:"sslmode"`
	Migrations string `mapstructure:"migrations" yaml:"migrations"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// RedisConfig holds Redis configuration for job state
type RedisConfig struct {
	URL       string        `mapstructure:"url" yaml:"url"`
	LockTTL   time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
	ResultTTL time.Duration `mapstructure:"result_ttl" yaml:"result_ttl"`
}

// NATSConfig holds message bus configuration
type NATSConfig struct {
	URL  string `mapstructure:"url" yaml:"url"`
	Name string `mapstructure:"name" yaml:"name"`
}

// ReportConfig holds the report generation tunables
type ReportConfig struct {
	// IdleThresholdSeconds is the largest gap between two events still
	// counted as continuous activity.
	IdleThresholdSeconds int64 `mapstructure:"idle_threshold_seconds" yaml:"idle_threshold_seconds"`

	// BorrowedTimeSeconds is the flat credit granted when a session ends in
	// an idle gap or at a day boundary.
	BorrowedTimeSeconds int64 `mapstructure:"borrowed_time_seconds" yaml:"borrowed_time_seconds"`

	// AllowedTargets restricts which event targets count. Empty means all.
	AllowedTargets []string `mapstructure:"allowed_targets" yaml:"allowed_targets"`

	// ArtifactsDir is where generated CSV files are stored.
	ArtifactsDir string `mapstructure:"artifacts_dir" yaml:"artifacts_dir"`

	// PublicBasePath is the URL prefix under which artifacts are served.
	PublicBasePath string `mapstructure:"public_base_path" yaml:"public_base_path"`
}

// NotifyConfig holds report-ready notification settings
type NotifyConfig struct {
	WebhookURL string        `mapstructure:"webhook_url" yaml:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CORSConfig holds allowed origins for the browser-facing API
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8086)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "timereport")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "timereport")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations", "file://migrations")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.lock_ttl", "5m")
	v.SetDefault("redis.result_ttl", "24h")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.name", "timereport")

	// 30 minutes idle, 15 minutes borrowed time: the defaults the report
	// semantics were tuned around.
	v.SetDefault("report.idle_threshold_seconds", 1800)
	v.SetDefault("report.borrowed_time_seconds", 900)
	v.SetDefault("report.allowed_targets", []string{})
	v.SetDefault("report.artifacts_dir", "data/reports")
	v.SetDefault("report.public_base_path", "/reports")

	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("cors.allowed_origins", []string{"*"})

	// Read from config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override file config,
	// e.g. TIMEREPORT_DATABASE_HOST.
	v.SetEnvPrefix("TIMEREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the aggregator cannot run with.
func (c *Config) Validate() error {
	if c.Report.IdleThresholdSeconds <= 0 {
		return fmt.Errorf("report.idle_threshold_seconds must be positive")
	}
	if c.Report.BorrowedTimeSeconds < 0 {
		return fmt.Errorf("report.borrowed_time_seconds must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// Dump renders the effective configuration as YAML for startup logging.
// The database password is excluded.
func (c *Config) Dump() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(out), nil
}
