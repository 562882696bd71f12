// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// AviationStack API
	APIKey      string
	APIBaseURL  string
	HTTPTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	PageDelay   time.Duration
	DateDelay   time.Duration

	// PostgreSQL
	DatabaseURL string

	// Checkpoint
	CheckpointBackend string
	CheckpointFile    string

	// Observability
	MetricsPort string
	LogFile     string
}

const (
	// CheckpointBackendFile stores the cursor in a local text file.
	CheckpointBackendFile = "file"
	// CheckpointBackendPostgres stores the cursor in a database row.
	CheckpointBackendPostgres = "postgres"
)

var (
	ErrMissingAPIKey      = errors.New("AVIATIONSTACK_API_KEY not set")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL not set")
)

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),

		APIKey:      os.Getenv("AVIATIONSTACK_API_KEY"),
		APIBaseURL:  getEnv("AVIATIONSTACK_BASE_URL", "https://api.aviationstack.com/v1/"),
		HTTPTimeout: time.Duration(getEnvAsInt("HTTP_TIMEOUT", 30)) * time.Second,
		MaxRetries:  getEnvAsInt("MAX_RETRIES", 3),
		RetryDelay:  time.Duration(getEnvAsInt("RETRY_DELAY", 2)) * time.Second,
		PageDelay:   time.Duration(getEnvAsInt("PAGE_DELAY", 1)) * time.Second,
		DateDelay:   time.Duration(getEnvAsInt("DATE_DELAY", 2)) * time.Second,

		DatabaseURL: os.Getenv("DATABASE_URL"),

		CheckpointBackend: getEnv("CHECKPOINT_BACKEND", CheckpointBackendFile),
		CheckpointFile:    getEnv("CHECKPOINT_FILE", "checkpoint.txt"),

		MetricsPort: getEnv("METRICS_PORT", ""),
		LogFile:     getEnv("LOG_FILE", ""),
	}

	// Credentials and the connection string are required inputs; their
	// absence is a fatal configuration error at startup.
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
