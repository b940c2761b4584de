package config

import (
	"fmt"
	"os"
)

// Config holds environment-specific configuration.
type Config struct {
	Port          string
	MySQLDSN      string
	RedisAddr     string
	APIKey        string // app client id, the audience of POS session tokens
	APISecret     string // app shared secret, signs POS session tokens
	APIVersion    string
	AllowedOrigin string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnvOrDefault("PORT", "8080"),
		MySQLDSN:      getEnvOrDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/postransfer?parseTime=true"),
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		APIKey:        os.Getenv("SHOPIFY_API_KEY"),
		APISecret:     os.Getenv("SHOPIFY_API_SECRET"),
		APIVersion:    getEnvOrDefault("SHOPIFY_API_VERSION", "2024-10"),
		AllowedOrigin: getEnvOrDefault("CORS_ALLOWED_ORIGIN", "*"),
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("SHOPIFY_API_KEY is required")
	}
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("SHOPIFY_API_SECRET is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
