// Package config loads application configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// HTTP API
	HTTPAddr string

	// Database. Empty selects local SQLite mode.
	DatabaseURL string
	SQLitePath  string
	MaxConns    int

	// Redis report cache (optional).
	RedisURL  string
	ReportTTL time.Duration

	// RabbitMQ event publishing (optional).
	RabbitMQURL string

	// Sessions
	WindowStartHour int
	WindowEndHour   int
	SessionIdleTTL  time.Duration
	SweepSchedule   string
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr: getEnv("KAIROS_HTTP_ADDR", "0.0.0.0:8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("KAIROS_SQLITE_PATH", ""),
		MaxConns:    getIntEnv("KAIROS_DB_MAX_CONNS", 4),

		RedisURL:  getEnv("REDIS_URL", ""),
		ReportTTL: getDurationEnv("KAIROS_REPORT_TTL", 5*time.Minute),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		WindowStartHour: getIntEnv("KAIROS_WINDOW_START_HOUR", 8),
		WindowEndHour:   getIntEnv("KAIROS_WINDOW_END_HOUR", 18),
		SessionIdleTTL:  getDurationEnv("KAIROS_SESSION_IDLE_TTL", 30*time.Minute),
		SweepSchedule:   getEnv("KAIROS_SWEEP_SCHEDULE", "@every 5m"),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
