package config

import (
	"os"
	"strconv"
	"time"

	"oohdesk/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Import   ImportConfig
	Geocoder GeocoderConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// ImportConfig holds bulk-import settings
type ImportConfig struct {
	// MaxUploadBytes caps spreadsheet uploads; larger files are rejected
	// before parsing.
	MaxUploadBytes int64
	// ImagesDir is where attached point photos are written.
	ImagesDir string
}

// GeocoderConfig holds geocoding service settings
type GeocoderConfig struct {
	BaseURL   string
	UserAgent string
	// RowDelay is the fixed pause between geocoded rows, keeping the run
	// under the service quota.
	RowDelay time.Duration
	// RateLimitBackoff is the wait before retrying a rate-limited row; it
	// must exceed RowDelay.
	RateLimitBackoff time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	config.Server = ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}

	config.Import = ImportConfig{
		MaxUploadBytes: getEnvInt64OrDefault("IMPORT_MAX_UPLOAD_BYTES", 5*1024*1024),
		ImagesDir:      getEnvOrDefault("IMPORT_IMAGES_DIR", "data/images"),
	}

	config.Geocoder = GeocoderConfig{
		BaseURL:          getEnvOrDefault("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		UserAgent:        getEnvOrDefault("GEOCODER_USER_AGENT", "oohdesk"),
		RowDelay:         getEnvDurationOrDefault("GEOCODER_ROW_DELAY", 1100*time.Millisecond),
		RateLimitBackoff: getEnvDurationOrDefault("GEOCODER_RATE_LIMIT_BACKOFF", 5*time.Second),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:     url,
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}, nil
}

func validateConfig(config *Config) error {
	if config.Import.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("IMPORT_MAX_UPLOAD_BYTES must be positive")
	}
	if config.Geocoder.RateLimitBackoff <= config.Geocoder.RowDelay {
		return errors.ConfigInvalid("GEOCODER_RATE_LIMIT_BACKOFF must exceed GEOCODER_ROW_DELAY")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
