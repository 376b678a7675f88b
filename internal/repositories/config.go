package repositories

import (
	"errors"
	"time"

	"lanka-invoice-api/internal/models"
)

// Config represents repository configuration
type Config struct {
	// DefaultLimit is the default limit for list queries
	DefaultLimit int `json:"default_limit" mapstructure:"default_limit"`

	// MaxLimit is the maximum allowed limit for list queries
	MaxLimit int `json:"max_limit" mapstructure:"max_limit"`

	// SlowQueryThreshold is the duration above which queries are logged at warn level
	SlowQueryThreshold time.Duration `json:"slow_query_threshold" mapstructure:"slow_query_threshold"`

	// EnableQueryLogging logs every statement at debug level
	EnableQueryLogging bool `json:"enable_query_logging" mapstructure:"enable_query_logging"`
}

// DefaultConfig returns a default repository configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit:       models.DefaultListLimit,
		MaxLimit:           models.MaxListLimit,
		SlowQueryThreshold: 500 * time.Millisecond,
		EnableQueryLogging: true,
	}
}

// Validate validates the repository configuration
func (c *Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return errors.New("default limit must be greater than 0")
	}

	if c.MaxLimit <= 0 {
		return errors.New("max limit must be greater than 0")
	}

	if c.DefaultLimit > c.MaxLimit {
		return errors.New("default limit cannot exceed max limit")
	}

	if c.SlowQueryThreshold < 0 {
		return errors.New("slow query threshold cannot be negative")
	}

	return nil
}

// ClampLimit applies the default and maximum list limit
func (c *Config) ClampLimit(limit int) int {
	if limit <= 0 {
		return c.DefaultLimit
	}
	if limit > c.MaxLimit {
		return c.MaxLimit
	}
	return limit
}
