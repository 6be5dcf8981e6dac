package config

import (
	"fmt"
	"os"
	"strconv"

	domaincfg "github.com/modryn-studio/ProjectLoom-sub000/domain/config"
)

// Storage drivers for workspace snapshots
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Persistence
	StorageDriver string
	SnapshotDir   string

	// AWS configuration, used when StorageDriver is dynamodb
	AWSRegion     string
	DynamoDBTable string

	// LLM service
	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Rate limiting, requests per minute per client
	RateLimitPerMinute int

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool
	RequireAuth   bool

	// DynamicConfigFile is an optional YAML file with domain rule
	// overrides, hot-reloaded while running
	DynamicConfigFile string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		StorageDriver: getEnv("STORAGE_DRIVER", StorageFile),
		SnapshotDir:   getEnv("SNAPSHOT_DIR", "./data/workspaces"),

		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("DYNAMODB_TABLE", "loom-workspaces"),

		LLMEndpoint: getEnv("LLM_ENDPOINT", ""),
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		LLMModel:    getEnv("LLM_MODEL", "gpt-4o-mini"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "loom-api"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
		RequireAuth:   getEnvBool("REQUIRE_AUTH", false),

		DynamicConfigFile: getEnv("DYNAMIC_CONFIG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory, StorageFile, StorageDynamoDB:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.IsProduction() {
		if c.RequireAuth && c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production when auth is enabled")
		}
		if c.StorageDriver == StorageMemory {
			return fmt.Errorf("memory storage is not allowed in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DomainConfig builds the domain rule set, applying any environment
// overrides on top of the defaults
func (c *Config) DomainConfig() *domaincfg.DomainConfig {
	d := domaincfg.DefaultDomainConfig()
	if v := getEnvInt("MAX_MERGE_PARENTS", 0); v > 0 {
		d.MaxMergeParents = v
	}
	if v := getEnvInt("UNDO_DEPTH", 0); v > 0 {
		d.UndoDepth = v
	}
	if v := getEnvInt("MAX_CARDS_PER_WORKSPACE", 0); v > 0 {
		d.MaxCardsPerWorkspace = v
	}
	return d
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
