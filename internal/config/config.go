package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// Session
	AppSecret    string
	SessionHours int

	// Operator account seeded when the users table is empty
	AppUser string
	AppPass string

	// Calendar
	Timezone string

	// Background Workers
	WorkerCount int

	// Sentry
	SentryDSN string
}

const (
	devSecret = "dev-secret-change-in-production"
	devUser   = "admin"
	devPass   = "admin"
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AppSecret:    getEnv("APP_SECRET", ""),
		SessionHours: getEnvAsInt("SESSION_HOURS", 12),
		AppUser:      getEnv("APP_USER", ""),
		AppPass:      getEnv("APP_PASS", ""),
		Timezone:     getEnv("TIMEZONE", "America/Santiago"),
		WorkerCount:  getEnvAsInt("WORKER_COUNT", 2),
		SentryDSN:    getEnv("SENTRY_DSN", ""),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsProduction() {
		if cfg.AppSecret == "" {
			return nil, fmt.Errorf("APP_SECRET is required in production")
		}
		if cfg.AppUser == "" || cfg.AppPass == "" {
			return nil, fmt.Errorf("APP_USER and APP_PASS are required in production")
		}
	}

	// Development defaults
	if cfg.AppSecret == "" {
		cfg.AppSecret = devSecret
	}
	if cfg.AppUser == "" {
		cfg.AppUser = devUser
	}
	if cfg.AppPass == "" {
		cfg.AppPass = devPass
	}
	if cfg.SessionHours <= 0 {
		cfg.SessionHours = 12
	}

	return cfg, nil
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
