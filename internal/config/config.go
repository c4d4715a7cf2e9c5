package config

import (
	"os"
	"strconv"
	"time"

	"github.com/transactional/dam-service/internal/authority"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	TablePrefix string
	CORSOrigins string
	// Service token verification for the internal endpoints
	JWKSURL string
	// Resource authority connection
	Authority authority.Config
	// Page size used when walking a tenant's assets in background jobs
	TaskAssetPageSize int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWKSURL:     getEnv("JWKS_URL", ""),
		Authority: authority.Config{
			BaseURL:          getEnv("AUTHORITY_BASE_URL", ""),
			TokenlessBaseURL: getEnv("AUTHORITY_TOKENLESS_BASE_URL", ""),
			APIVersion:       getEnv("AUTHORITY_API_VERSION", "v1"),
			PageSize:         getEnvInt("AUTHORITY_PAGE_SIZE", 1000),
			Timeout:          getEnvDuration("AUTHORITY_TIMEOUT", 30*time.Second),
		},
		TaskAssetPageSize: getEnvInt("TASK_ASSET_PAGE_SIZE", 100),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
