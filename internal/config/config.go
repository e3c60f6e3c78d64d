package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

type Config struct {
	// Environment
	GoEnv string `env:"GO_ENV" default:"development"`

	// Service Ports
	HTTPPort int `env:"HTTP_PORT" default:"8084"`
	UDPPort  int `env:"UDP_PORT" default:"0"` // 0 disables the UDP event feed

	// Storage
	StorageDriver string `env:"STORAGE_DRIVER" default:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH" default:"./data/manhwahub.db"`
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisURL      string `env:"REDIS_URL" default:"redis://localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	MongoURI      string `env:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" default:"manhwahub"`

	// Cross-process sync
	SyncEnabled  bool          `env:"SYNC_ENABLED" default:"false"`
	SyncChannel  string        `env:"SYNC_CHANNEL" default:"manhwahub:notifications:sync"`
	PollInterval time.Duration `env:"POLL_INTERVAL" default:"10s"`

	// Alerts
	SoundEnabled      bool   `env:"SOUND_ENABLED" default:"false"`
	SoundCommand      string `env:"SOUND_COMMAND" default:"aplay"`
	DesktopPermission string `env:"DESKTOP_PERMISSION" default:"default"`
	DesktopCommand    string `env:"DESKTOP_COMMAND" default:"notify-send"`

	// Authentication
	JWTSecret string        `env:"JWT_SECRET" required:"true"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" default:"24h"`

	// Producer endpoint limits
	CreateRateLimit float64 `env:"CREATE_RATE_LIMIT" default:"20"`
	CreateRateBurst int     `env:"CREATE_RATE_BURST" default:"40"`

	// Development
	LogLevel  string `env:"LOG_LEVEL" default:"debug"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env is fine, system env vars still apply
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := &Config{}

	if err := loadEnvString(&config.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.HTTPPort, "HTTP_PORT", 8084); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.UDPPort, "UDP_PORT", 0); err != nil {
		return nil, err
	}

	// Storage
	if err := loadEnvString(&config.StorageDriver, "STORAGE_DRIVER", DriverSQLite); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.SQLitePath, "SQLITE_PATH", "./data/manhwahub.db"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.DatabaseURL, "DATABASE_URL", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisURL, "REDIS_URL", "redis://localhost:6379"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.RedisPassword, "REDIS_PASSWORD", ""); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.MongoURI, "MONGO_URI", "mongodb://localhost:27017"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.MongoDatabase, "MONGO_DATABASE", "manhwahub"); err != nil {
		return nil, err
	}

	// Sync
	if err := loadEnvBool(&config.SyncEnabled, "SYNC_ENABLED", false); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.SyncChannel, "SYNC_CHANNEL", "manhwahub:notifications:sync"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.PollInterval, "POLL_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}

	// Alerts
	if err := loadEnvBool(&config.SoundEnabled, "SOUND_ENABLED", false); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.SoundCommand, "SOUND_COMMAND", "aplay"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.DesktopPermission, "DESKTOP_PERMISSION", "default"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.DesktopCommand, "DESKTOP_COMMAND", "notify-send"); err != nil {
		return nil, err
	}

	// Authentication
	if err := loadEnvStringRequired(&config.JWTSecret, "JWT_SECRET"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&config.JWTExpiry, "JWT_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}

	// Producer limits
	if err := loadEnvFloat(&config.CreateRateLimit, "CREATE_RATE_LIMIT", 20); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.CreateRateBurst, "CREATE_RATE_BURST", 40); err != nil {
		return nil, err
	}

	// Development
	if err := loadEnvString(&config.LogLevel, "LOG_LEVEL", "debug"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&config.LogFormat, "LOG_FORMAT", "text"); err != nil {
		return nil, err
	}
	return config, nil
}

// Helper functions for type conversion and validation
func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}
	if c.UDPPort < 0 || c.UDPPort > 65535 {
		errors = append(errors, "UDP_PORT must be between 0 and 65535")
	}

	validDrivers := []string{DriverMemory, DriverSQLite, DriverPostgres, DriverRedis, DriverMongo}
	if !contains(validDrivers, c.StorageDriver) {
		errors = append(errors, fmt.Sprintf("STORAGE_DRIVER must be one of: %s", strings.Join(validDrivers, ", ")))
	}
	if c.StorageDriver == DriverPostgres && c.DatabaseURL == "" {
		errors = append(errors, "DATABASE_URL is required for the postgres driver")
	}

	if c.PollInterval <= 0 {
		errors = append(errors, "POLL_INTERVAL must be positive")
	}

	validPermissions := []string{"default", "granted", "denied"}
	if !contains(validPermissions, c.DesktopPermission) {
		errors = append(errors, fmt.Sprintf("DESKTOP_PERMISSION must be one of: %s", strings.Join(validPermissions, ", ")))
	}

	if c.CreateRateLimit <= 0 || c.CreateRateBurst < 1 {
		errors = append(errors, "CREATE_RATE_LIMIT and CREATE_RATE_BURST must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	// HS256 keys shorter than the hash output are weak
	if len(c.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET should be at least 32 characters long")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
