package config

import (
	"context"
	"os"
	"testing"

	"lanka-invoice-api/internal/models"

	"github.com/shopspring/decimal"
)

var taxEnvVars = []string{
	"TAX_COUNTRY_CODE",
	"TAX_SSCL_RATE",
	"TAX_DEFAULT_VAT_RATE",
	"TAX_ENABLE_VALIDATION",
}

// clearEnv unsets keys for the duration of the test and restores them afterwards
func clearEnv(t *testing.T, keys []string) {
	t.Helper()

	originalEnv := make(map[string]string)
	for _, key := range keys {
		originalEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}

	t.Cleanup(func() {
		for key, value := range originalEnv {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	})
}

func TestLoadTaxSystemConfig(t *testing.T) {
	clearEnv(t, taxEnvVars)

	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*TaxSystemConfig)
	}{
		{
			name:    "default configuration",
			envVars: map[string]string{},
			check: func(config *TaxSystemConfig) {
				if config.CountryCode != "LK" {
					t.Errorf("Expected default country code LK, got %s", config.CountryCode)
				}
				if !config.EnableTaxValidation {
					t.Errorf("Expected default EnableTaxValidation true, got %v", config.EnableTaxValidation)
				}
				if !config.SSCLRate.IsZero() || !config.DefaultVATRate.IsZero() {
					t.Errorf("Expected no rate overrides, got SSCL %s VAT %s", config.SSCLRate, config.DefaultVATRate)
				}
			},
		},
		{
			name: "custom configuration",
			envVars: map[string]string{
				"TAX_COUNTRY_CODE":      "LKA",
				"TAX_SSCL_RATE":         "0.03",
				"TAX_DEFAULT_VAT_RATE":  "0.18",
				"TAX_ENABLE_VALIDATION": "off",
			},
			check: func(config *TaxSystemConfig) {
				if config.CountryCode != "LKA" {
					t.Errorf("Expected country code LKA, got %s", config.CountryCode)
				}
				if !config.SSCLRate.Equal(decimal.RequireFromString("0.03")) {
					t.Errorf("Expected SSCL rate 0.03, got %s", config.SSCLRate)
				}
				if !config.DefaultVATRate.Equal(decimal.RequireFromString("0.18")) {
					t.Errorf("Expected VAT rate 0.18, got %s", config.DefaultVATRate)
				}
				if config.EnableTaxValidation {
					t.Errorf("Expected EnableTaxValidation false, got %v", config.EnableTaxValidation)
				}
			},
		},
		{
			name:    "invalid SSCL rate - too high",
			envVars: map[string]string{"TAX_SSCL_RATE": "2.5"},
			wantErr: true,
		},
		{
			name:    "invalid VAT rate - negative",
			envVars: map[string]string{"TAX_DEFAULT_VAT_RATE": "-0.1"},
			wantErr: true,
		},
		{
			name:    "invalid VAT rate - not a number",
			envVars: map[string]string{"TAX_DEFAULT_VAT_RATE": "eighteen"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}
			defer func() {
				for key := range tt.envVars {
					os.Unsetenv(key)
				}
			}()

			config, err := LoadTaxSystemConfig()

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if tt.check != nil {
				tt.check(config)
			}
		})
	}
}

func TestTaxSystemConfig_CreateTaxService(t *testing.T) {
	tests := []struct {
		name     string
		config   *TaxSystemConfig
		wantErr  bool
		wantVAT  string
		wantSSCL string
	}{
		{
			name:     "Sri Lanka defaults",
			config:   &TaxSystemConfig{CountryCode: "LK", EnableTaxValidation: true},
			wantVAT:  "0.15",
			wantSSCL: "0.025",
		},
		{
			name: "rate overrides",
			config: &TaxSystemConfig{
				CountryCode:    "LK",
				SSCLRate:       decimal.RequireFromString("0.03"),
				DefaultVATRate: decimal.RequireFromString("0.18"),
			},
			wantVAT:  "0.18",
			wantSSCL: "0.03",
		},
		{
			name: "SSCL override only",
			config: &TaxSystemConfig{
				CountryCode: "LK",
				SSCLRate:    decimal.RequireFromString("0.03"),
			},
			wantVAT:  "0.15",
			wantSSCL: "0.03",
		},
		{
			name:    "invalid country code",
			config:  &TaxSystemConfig{CountryCode: "AU"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := tt.config.CreateTaxService(nil)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			info := service.GetTaxInfo(context.Background())
			if !info.VATRate.Equal(decimal.RequireFromString(tt.wantVAT)) {
				t.Errorf("Expected VAT rate %s, got %s", tt.wantVAT, info.VATRate)
			}
			if !info.SSCLRate.Equal(decimal.RequireFromString(tt.wantSSCL)) {
				t.Errorf("Expected SSCL rate %s, got %s", tt.wantSSCL, info.SSCLRate)
			}
		})
	}
}

func TestTaxSystemConfig_CreateTaxService_Validation(t *testing.T) {
	ctx := context.Background()

	strict, err := (&TaxSystemConfig{CountryCode: "LK", EnableTaxValidation: true}).CreateTaxService(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := strict.ValidateBusinessNumber(ctx, "123"); err == nil {
		t.Error("Expected malformed VAT number to be rejected")
	}

	lenient, err := (&TaxSystemConfig{CountryCode: "LK", EnableTaxValidation: false}).CreateTaxService(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := lenient.ValidateBusinessNumber(ctx, "123"); err != nil {
		t.Errorf("Expected validation to be disabled, got %v", err)
	}
}

func TestTaxSystemConfig_ValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *TaxSystemConfig
		wantErr bool
	}{
		{
			name:   "valid config",
			config: &TaxSystemConfig{CountryCode: "LK", SSCLRate: decimal.RequireFromString("0.025")},
		},
		{
			name:    "empty country code",
			config:  &TaxSystemConfig{CountryCode: ""},
			wantErr: true,
		},
		{
			name:    "invalid country code",
			config:  &TaxSystemConfig{CountryCode: "INVALID"},
			wantErr: true,
		},
		{
			name:    "SSCL rate too high",
			config:  &TaxSystemConfig{CountryCode: "LK", SSCLRate: decimal.RequireFromString("1.5")},
			wantErr: true,
		},
		{
			name:    "VAT rate negative",
			config:  &TaxSystemConfig{CountryCode: "LK", DefaultVATRate: decimal.RequireFromString("-0.1")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.ValidateConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCustomTaxConfig(t *testing.T) {
	customConfig := &CustomTaxConfig{
		TaxConfig:     &models.SriLankaTaxConfig{},
		customVATRate: decimal.RequireFromString("0.18"),
	}

	if !customConfig.GetVATRate().Equal(decimal.RequireFromString("0.18")) {
		t.Errorf("Expected custom VAT rate 0.18, got %s", customConfig.GetVATRate())
	}

	// base values are used when there is no override
	if !customConfig.GetSSCLRate().Equal(models.SriLankaSSCLRate) {
		t.Errorf("Expected base SSCL rate, got %s", customConfig.GetSSCLRate())
	}
	if customConfig.GetCountryCode() != "LK" {
		t.Errorf("Expected country code LK, got %s", customConfig.GetCountryCode())
	}

	result := models.CalculateInvoiceTaxesWithConfig(customConfig, models.TaxCalculationInput{
		Tenant: models.TenantTaxProfile{
			VATRegistered:   true,
			VATNumber:       strPtr("114512345-7000"),
			FiscalYearStart: "04-01",
		},
		LineItems: []models.LineItemInput{{
			Description: "Consulting",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(1000),
			Taxable:     true,
			TaxCategory: models.TaxCategoryStandard,
		}},
	})
	if !result.TaxBreakdown.VATAmount.Equal(decimal.NewFromInt(180)) {
		t.Errorf("Expected VAT 180 at the custom rate, got %s", result.TaxBreakdown.VATAmount)
	}
}

func strPtr(s string) *string {
	return &s
}
