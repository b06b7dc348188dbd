package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "membergraph/backend/pkg/errors"
)

// Store backends selectable through STORE_BACKEND
const (
	BackendMemory   = "memory"
	BackendNeo4j    = "neo4j"
	BackendPostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Store selection
	StoreBackend string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// Postgres
	DatabaseURL string

	// Request handling
	RequestTimeout time.Duration

	// Seed demo users alongside the member tiers (memory backend and seed command)
	SeedDemoData bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", ""),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		Neo4jURI:       getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:      getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:  getEnv("NEO4J_PASSWORD", "password"),
		Neo4jDatabase:  getEnv("NEO4J_DATABASE", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_MS", 10000)) * time.Millisecond,
		SeedDemoData:   getEnvBool("SEED_DEMO_DATA", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Port == "" {
		return apperrors.NewConfigMissingRequired("PORT")
	}
	if c.RequestTimeout <= 0 {
		return apperrors.NewConfigValidationFailed("REQUEST_TIMEOUT_MS", "must be positive")
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendNeo4j:
		if c.Neo4jURI == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_URI")
		}
		if c.Neo4jUser == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_USER")
		}
		if c.Neo4jPassword == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return apperrors.NewConfigMissingRequired("DATABASE_URL")
		}
	default:
		return apperrors.NewConfigValidationFailed("STORE_BACKEND",
			fmt.Sprintf("unknown backend %q (want memory, neo4j or postgres)", c.StoreBackend))
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}
