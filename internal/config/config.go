package config

import (
	"fmt"
	"os"
	"strings"

	"lanka-invoice-api/internal/adapters/storage"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Database    DatabaseConfig
	JWT         JWTConfig
	Tracking    TrackingConfig
	Archive     ArchiveConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
	Tax         *TaxSystemConfig
}

// JWTConfig holds the settings used to verify bearer tokens issued by the auth service
type JWTConfig struct {
	Secret string
	Issuer string
}

// TrackingConfig holds delivery tracking configuration
type TrackingConfig struct {
	Secret        string
	PublicBaseURL string
}

// ArchiveConfig holds where issued invoice documents are kept
type ArchiveConfig struct {
	Backend string // "local", "memory" or "none"
	Path    string
}

// DefaultArchivePath is where the local archive lives outside Lambda
const DefaultArchivePath = "./data/archive"

// ToStorageConfig converts to the document store configuration
func (c ArchiveConfig) ToStorageConfig() *storage.Config {
	return &storage.Config{Backend: c.Backend, BasePath: c.Path}
}

// Validate checks the archive settings
func (c ArchiveConfig) Validate() error {
	switch strings.ToLower(c.Backend) {
	case storage.BackendLocal:
		if c.Path == "" {
			return fmt.Errorf("ARCHIVE_PATH is required for the local backend")
		}
	case storage.BackendMemory, storage.BackendNone:
	default:
		return fmt.Errorf("unsupported archive backend: %s", c.Backend)
	}
	return nil
}

// RateLimitConfig holds the per-client request limits
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PATH", "./data/invoices.db")
	viper.SetDefault("MIGRATIONS_PATH", "")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 1)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 1)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("JWT_ISSUER", "")
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8081")
	viper.SetDefault("ARCHIVE_BACKEND", storage.BackendLocal)
	viper.SetDefault("ARCHIVE_PATH", DefaultArchivePath)
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("RATE_LIMIT_BURST", 40)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Database: DatabaseConfig{
			Path:            viper.GetString("DB_PATH"),
			MigrationsPath:  viper.GetString("MIGRATIONS_PATH"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: viper.GetDuration("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     viper.GetBool("DB_AUTO_MIGRATE"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
			Issuer: viper.GetString("JWT_ISSUER"),
		},
		Tracking: TrackingConfig{
			Secret:        viper.GetString("TRACKING_SECRET"),
			PublicBaseURL: strings.TrimRight(viper.GetString("PUBLIC_BASE_URL"), "/"),
		},
		Archive: ArchiveConfig{
			Backend: viper.GetString("ARCHIVE_BACKEND"),
			Path:    viper.GetString("ARCHIVE_PATH"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	tax, err := LoadTaxSystemConfig()
	if err != nil {
		return nil, err
	}
	config.Tax = tax

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks the settings the service cannot start without. Secrets
// are only mandatory in production.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}

	if err := c.Archive.Validate(); err != nil {
		return fmt.Errorf("invalid archive configuration: %w", err)
	}

	if c.IsProduction() {
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.Tracking.Secret == "" {
			return fmt.Errorf("TRACKING_SECRET is required in production")
		}
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate limit must allow at least one request, got %v rps burst %d", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}

	if c.Tax != nil {
		if err := c.Tax.ValidateConfig(); err != nil {
			return fmt.Errorf("invalid tax configuration: %w", err)
		}
	}

	return nil
}

// NewLogger builds the root logger
func (c LoggingConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(c.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
