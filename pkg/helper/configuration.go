package helper

import (
	"os"
	"strconv"
	"time"

	database "github.com/yishak-cs/cafe_order/internal/database"
	"github.com/yishak-cs/cafe_order/internal/erp"
	"github.com/yishak-cs/cafe_order/internal/logging"
)

// AppConfig holds everything the server needs at start-up
type AppConfig struct {
	Port               string
	GinMode            string
	DataDir            string
	MenuFile           string
	AdminToken         string
	CacheTTL           time.Duration
	OrderRatePerMinute int

	Log   logging.Config
	Neo4j database.Config
	Odoo  erp.Config
}

// LoadConfigFromEnv loads the application configuration from environment variables
func LoadConfigFromEnv() AppConfig {
	return AppConfig{
		Port:               getEnvOrDefault("APP_PORT", "8080"),
		GinMode:            getEnvOrDefault("GIN_MODE", "release"),
		DataDir:            getEnvOrDefault("DATA_DIR", "./data"),
		MenuFile:           getEnvOrDefault("MENU_FILE", ""),
		AdminToken:         getEnvOrDefault("ADMIN_TOKEN", ""),
		CacheTTL:           getDurationOrDefault("CACHE_TTL", 5*time.Minute),
		OrderRatePerMinute: getIntOrDefault("ORDER_RATE_PER_MINUTE", 10),
		Log: logging.Config{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Neo4j: LoadNeo4jConfigFromEnv(),
		Odoo: erp.Config{
			URL:      getEnvOrDefault("ODOO_URL", ""),
			Database: getEnvOrDefault("ODOO_DB", ""),
			Username: getEnvOrDefault("ODOO_USERNAME", ""),
			Password: getEnvOrDefault("ODOO_PASSWORD", ""),
			Timeout:  getDurationOrDefault("ODOO_TIMEOUT", 15*time.Second),
		},
	}
}

// LoadNeo4jConfigFromEnv loads Neo4j configuration from environment variables.
// An empty URI disables the order-history graph.
func LoadNeo4jConfigFromEnv() database.Config {
	return database.Config{
		URI:      getEnvOrDefault("NEO4J_URI", ""),
		Username: getEnvOrDefault("NEO4J_USERNAME", "neo4j"),
		Password: getEnvOrDefault("NEO4J_PASSWORD", ""),
		Database: getEnvOrDefault("NEO4J_DATABASE", "neo4j"),
	}
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
