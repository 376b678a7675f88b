package config

import (
	"fmt"
	"os"
	"strings"

	"lanka-invoice-api/internal/models"
	"lanka-invoice-api/internal/services"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TaxSystemConfig holds configuration for the tax system
type TaxSystemConfig struct {
	CountryCode         string          `json:"country_code" env:"TAX_COUNTRY_CODE" default:"LK"`
	SSCLRate            decimal.Decimal `json:"sscl_rate,omitempty" env:"TAX_SSCL_RATE"`
	DefaultVATRate      decimal.Decimal `json:"default_vat_rate,omitempty" env:"TAX_DEFAULT_VAT_RATE"`
	EnableTaxValidation bool            `json:"enable_tax_validation" env:"TAX_ENABLE_VALIDATION" default:"true"`
}

// LoadTaxSystemConfig loads tax system configuration from environment variables
func LoadTaxSystemConfig() (*TaxSystemConfig, error) {
	config := &TaxSystemConfig{
		CountryCode:         getEnvWithDefault("TAX_COUNTRY_CODE", "LK"),
		EnableTaxValidation: getEnvBoolWithDefault("TAX_ENABLE_VALIDATION", true),
	}

	if value := os.Getenv("TAX_SSCL_RATE"); value != "" {
		rate, err := parseRate("TAX_SSCL_RATE", value)
		if err != nil {
			return nil, err
		}
		config.SSCLRate = rate
	}

	if value := os.Getenv("TAX_DEFAULT_VAT_RATE"); value != "" {
		rate, err := parseRate("TAX_DEFAULT_VAT_RATE", value)
		if err != nil {
			return nil, err
		}
		config.DefaultVATRate = rate
	}

	return config, nil
}

func parseRate(key, value string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%s must be between 0 and 1, got %s", key, rate)
	}
	return rate, nil
}

// CreateTaxService creates a tax service based on the configuration
func (c *TaxSystemConfig) CreateTaxService(logger *logrus.Logger) (*services.TaxService, error) {
	baseConfig, err := models.NewTaxConfig(c.CountryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to create tax config for country %s: %w", c.CountryCode, err)
	}

	finalConfig := baseConfig
	if c.SSCLRate.IsPositive() || c.DefaultVATRate.IsPositive() {
		finalConfig = &CustomTaxConfig{
			TaxConfig:      baseConfig,
			customVATRate:  c.DefaultVATRate,
			customSSCLRate: c.SSCLRate,
		}
	}

	service := services.NewTaxService(finalConfig, logger)
	service.SetNumberValidation(c.EnableTaxValidation)
	return service, nil
}

// ValidateConfig validates the tax system configuration
func (c *TaxSystemConfig) ValidateConfig() error {
	if c.CountryCode == "" {
		return fmt.Errorf("country code cannot be empty")
	}

	if _, err := models.NewTaxConfig(c.CountryCode); err != nil {
		return fmt.Errorf("unsupported country code %s: %w", c.CountryCode, err)
	}

	one := decimal.NewFromInt(1)
	if c.SSCLRate.IsNegative() || c.SSCLRate.GreaterThan(one) {
		return fmt.Errorf("SSCL rate must be between 0 and 1, got %s", c.SSCLRate)
	}
	if c.DefaultVATRate.IsNegative() || c.DefaultVATRate.GreaterThan(one) {
		return fmt.Errorf("default VAT rate must be between 0 and 1, got %s", c.DefaultVATRate)
	}

	return nil
}

// CustomTaxConfig wraps a base tax config with rate overrides. Gazetted rate
// changes can be rolled out through the environment without a release.
type CustomTaxConfig struct {
	models.TaxConfig
	customVATRate  decimal.Decimal
	customSSCLRate decimal.Decimal
}

// GetVATRate returns the override when set, else the base rate
func (c *CustomTaxConfig) GetVATRate() decimal.Decimal {
	if c.customVATRate.IsPositive() {
		return c.customVATRate
	}
	return c.TaxConfig.GetVATRate()
}

// GetSSCLRate returns the override when set, else the base rate
func (c *CustomTaxConfig) GetSSCLRate() decimal.Decimal {
	if c.customSSCLRate.IsPositive() {
		return c.customSSCLRate
	}
	return c.TaxConfig.GetSSCLRate()
}

// Helper functions for environment variable parsing
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}
