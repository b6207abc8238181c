// Package config loads service configuration from an optional YAML file with
// an environment variable overlay.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Backend    BackendConfig    `yaml:"backend"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	RateLimitPerSec int           `yaml:"rate_limit_per_sec" env:"RATE_LIMIT_PER_SEC"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	AuditLogPath    string        `yaml:"audit_log_path" env:"AUDIT_LOG_PATH"`
}

// DatabaseConfig controls the Postgres connection.
type DatabaseConfig struct {
	URL             string        `yaml:"url" env:"DATABASE_URL"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DATABASE_CONN_MAX_LIFETIME"`
	RunMigrations   bool          `yaml:"run_migrations" env:"DATABASE_RUN_MIGRATIONS"`
}

// AuthConfig controls JWT verification.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
	Disabled  bool   `yaml:"disabled" env:"AUTH_DISABLED"`
}

// BackendConfig points at the Django backend the service proxies to.
type BackendConfig struct {
	BaseURL    string        `yaml:"base_url" env:"DJANGO_API_URL"`
	ServiceID  string        `yaml:"service_id" env:"BACKEND_SERVICE_ID"`
	ServiceKey string        `yaml:"service_key" env:"BACKEND_SERVICE_KEY"`
	Timeout    time.Duration `yaml:"timeout" env:"BACKEND_TIMEOUT"`
}

// ExtractionConfig controls the hosted-LLM document extraction pipeline.
type ExtractionConfig struct {
	Endpoint            string        `yaml:"endpoint" env:"LLM_ENDPOINT"`
	Model               string        `yaml:"model" env:"LLM_MODEL"`
	APIKey              string        `yaml:"api_key" env:"LLM_API_KEY"`
	Timeout             time.Duration `yaml:"timeout" env:"LLM_TIMEOUT"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold" env:"EXTRACTION_CONFIDENCE_THRESHOLD"`
	PollSchedule        string        `yaml:"poll_schedule" env:"EXTRACTION_POLL_SCHEDULE"`
	PollBatch           int           `yaml:"poll_batch" env:"EXTRACTION_POLL_BATCH"`
	DocumentDir         string        `yaml:"document_dir" env:"DOCUMENT_DIR"`
}

// CacheConfig controls the optional Redis report cache.
type CacheConfig struct {
	RedisURL string        `yaml:"redis_url" env:"REDIS_URL"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
			RateLimitPerSec: 50,
			RateLimitBurst:  100,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			RunMigrations:   true,
		},
		Backend: BackendConfig{
			ServiceID: "underwriter",
			Timeout:   30 * time.Second,
		},
		Extraction: ExtractionConfig{
			Model:               "gpt-4o-mini",
			Timeout:             60 * time.Second,
			ConfidenceThreshold: 0.7,
			PollSchedule:        "@every 30s",
			PollBatch:           10,
			DocumentDir:         "data/documents",
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config.yaml when present and applies the environment overlay.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific YAML file. A missing file
// is not an error; env vars still apply on top of defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := envdecode.Decode(cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("decode env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimitPerSec < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.Extraction.ConfidenceThreshold < 0 || c.Extraction.ConfidenceThreshold > 1 {
		return fmt.Errorf("extraction confidence threshold must be within [0,1]")
	}
	return nil
}
