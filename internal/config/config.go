package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the riskplan server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mailer   MailerConfig
	Analysis AnalysisConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// MailerConfig points at the platform mailer service. BaseURL is optional:
// without it, plan-created notifications are disabled.
type MailerConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type AnalysisConfig struct {
	ResultCacheTTL time.Duration
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("RISKPLAN_PORT", 8080),
			Env:  envString("RISKPLAN_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Mailer: MailerConfig{
			BaseURL: os.Getenv("MAILER_BASE_URL"),
			APIKey:  os.Getenv("MAILER_API_KEY"),
			Timeout: envDuration("MAILER_TIMEOUT", 10*time.Second),
		},
		Analysis: AnalysisConfig{
			ResultCacheTTL: envDuration("ANALYSIS_RESULT_CACHE_TTL", 30*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Mailer.BaseURL != "" &&
		!strings.HasPrefix(c.Mailer.BaseURL, "http://") &&
		!strings.HasPrefix(c.Mailer.BaseURL, "https://") {
		return fmt.Errorf("MAILER_BASE_URL must start with http:// or https://, got %q", c.Mailer.BaseURL)
	}

	if c.Analysis.ResultCacheTTL <= 0 {
		return fmt.Errorf("ANALYSIS_RESULT_CACHE_TTL must be positive")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
