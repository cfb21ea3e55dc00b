package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all service configuration
type Config struct {
	Service   ServiceConfig
	Storage   StorageConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

// StorageConfig holds data-root settings.
// DataDir is read once at startup; uploads, sites and the history file
// all live underneath it.
type StorageConfig struct {
	DataDir   string
	PublicDir string
}

// UploadConfig holds upload handling settings
type UploadConfig struct {
	MaxUploadMB int
	SlugLength  int
}

// RateLimitConfig holds request rate limiting settings
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 3000),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"), // Default to text for development
		},
		Storage: StorageConfig{
			DataDir:   getEnv("DATA_DIR", "data"),
			PublicDir: getEnv("PUBLIC_DIR", "public"),
		},
		Upload: UploadConfig{
			MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 200),
			SlugLength:  getEnvInt("SLUG_LENGTH", 8),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", false),
			RPS:     getEnvFloat("RATE_LIMIT_RPS", 20),
			Burst:   getEnvInt("RATE_LIMIT_BURST", 40),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Storage.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}

	if c.Upload.MaxUploadMB < 1 {
		return fmt.Errorf("max upload size must be at least 1 MB, got %d", c.Upload.MaxUploadMB)
	}

	if c.Upload.SlugLength < 4 {
		return fmt.Errorf("slug length must be at least 4, got %d", c.Upload.SlugLength)
	}

	return nil
}

// BodyLimit returns the upload ceiling in echo's BodyLimit notation
func (c *Config) BodyLimit() string {
	return fmt.Sprintf("%dM", c.Upload.MaxUploadMB)
}

// AbsDataDir resolves the configured data dir to an absolute path
func (c *Config) AbsDataDir() (string, error) {
	abs, err := filepath.Abs(c.Storage.DataDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve data dir %q: %w", c.Storage.DataDir, err)
	}
	return abs, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
