package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage drivers understood by the storage package
const (
	DriverMinio  = "minio"
	DriverS3     = "s3"
	DriverMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Port               string
	CorsOrigin         string
	Storage            StorageConfig
	Log                LogConfig
	MaxUploadSizeMB    int64
	RateLimitPerMinute int
	WriteTimeout       time.Duration
	ReadTimeout        time.Duration
}

// StorageConfig holds the S3-compatible provider configuration.
// Defaults point at a Backblaze B2 S3 endpoint.
type StorageConfig struct {
	Driver         string
	Endpoint       string
	Region         string
	KeyID          string
	ApplicationKey string
	UseSSL         bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load configuration from environment or use defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		CorsOrigin: getEnv("CORS_ORIGIN", "*"),
		Storage: StorageConfig{
			Driver:         getEnv("STORAGE_DRIVER", DriverMinio),
			Endpoint:       getEnv("B2_ENDPOINT", "s3.us-west-004.backblazeb2.com"),
			Region:         getEnv("B2_REGION", "us-west-004"),
			KeyID:          os.Getenv("B2_KEY_ID"),
			ApplicationKey: os.Getenv("B2_APPLICATION_KEY"),
			UseSSL:         getEnvBool("B2_USE_SSL", true),
		},
		Log: LogConfig{
			File:       getEnv("LOG_FILE", "b2gateway.log"),
			Level:      getEnv("LOG_LEVEL", "info"),
			MaxSizeMB:  int(getEnvInt64("LOG_MAX_SIZE_MB", 100)),
			MaxBackups: int(getEnvInt64("LOG_MAX_BACKUPS", 5)),
			MaxAgeDays: int(getEnvInt64("LOG_MAX_AGE_DAYS", 7)),
		},
		MaxUploadSizeMB:    getEnvInt64("MAX_UPLOAD_SIZE_MB", 100),
		RateLimitPerMinute: int(getEnvInt64("RATE_LIMIT_PER_MINUTE", 30)),
		WriteTimeout:       getEnvDuration("WRITE_TIMEOUT", 10*time.Minute), // uploads can be slow
		ReadTimeout:        getEnvDuration("READ_TIMEOUT", 10*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can be used to start the server
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMinio, DriverS3:
		if c.Storage.Endpoint == "" {
			return errors.New("storage endpoint is required")
		}
		if c.Storage.KeyID == "" || c.Storage.ApplicationKey == "" {
			return errors.New("B2_KEY_ID and B2_APPLICATION_KEY are required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadSizeMB)
	}
	return nil
}

// MaxUploadBytes returns the upload size limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadSizeMB << 20
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Helper function to get a boolean from environment variable
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// Helper function to get duration from environment variable
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// Helper function to get int64 from environment variable
func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intValue
}
