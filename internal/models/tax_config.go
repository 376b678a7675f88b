package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// TaxConfig defines the rates and identifiers of a tax jurisdiction
type TaxConfig interface {
	GetVATRate() decimal.Decimal
	GetSSCLRate() decimal.Decimal
	GetSVATEquivalentRate() decimal.Decimal
	GetTaxName() string
	GetCountryCode() string
	GetCurrencyCode() string
	GetDefaultFiscalYearStart() string
	ValidateBusinessNumber(vatNumber string) error
	ValidateTIN(tin string) error
	GetRequiredTaxInvoiceFields() []string
}

// SriLankaTaxConfig implements TaxConfig for the Inland Revenue Department rules:
// - VAT: 15% standard rate on taxable supplies
// - SSCL: 2.5% levy on the VAT-liable and zero-rated base
// - SVAT: voucher scheme for registered suppliers to exporters, reported
//   through vouchers instead of charged on the invoice
// - VAT number: 9-digit TIN followed by the 7000 VAT suffix
type SriLankaTaxConfig struct{}

var (
	// SriLankaVATRate is the standard VAT rate
	SriLankaVATRate = decimal.RequireFromString("0.15")

	// SriLankaSSCLRate is the Social Security Contribution Levy rate
	SriLankaSSCLRate = decimal.RequireFromString("0.025")

	// SriLankaSVATEquivalentRate is the effective rate SVAT vouchers are issued at
	SriLankaSVATEquivalentRate = decimal.RequireFromString("0.03")
)

var (
	vatNumberRegex = regexp.MustCompile(`^\d{9}-?7000$`)
	tinRegex       = regexp.MustCompile(`^\d{9}$`)
)

func (c *SriLankaTaxConfig) GetVATRate() decimal.Decimal {
	return SriLankaVATRate
}

func (c *SriLankaTaxConfig) GetSSCLRate() decimal.Decimal {
	return SriLankaSSCLRate
}

func (c *SriLankaTaxConfig) GetSVATEquivalentRate() decimal.Decimal {
	return SriLankaSVATEquivalentRate
}

func (c *SriLankaTaxConfig) GetTaxName() string {
	return "VAT"
}

func (c *SriLankaTaxConfig) GetCountryCode() string {
	return "LK"
}

func (c *SriLankaTaxConfig) GetCurrencyCode() string {
	return "LKR"
}

func (c *SriLankaTaxConfig) GetDefaultFiscalYearStart() string {
	return DefaultFiscalYearStart
}

// ValidateBusinessNumber validates a VAT registration number such as 114512345-7000
func (c *SriLankaTaxConfig) ValidateBusinessNumber(vatNumber string) error {
	if vatNumber == "" {
		return nil
	}

	cleaned := strings.ReplaceAll(strings.TrimSpace(vatNumber), " ", "")
	if !vatNumberRegex.MatchString(cleaned) {
		return errors.New("VAT number must be a 9 digit TIN followed by -7000")
	}
	return nil
}

// ValidateTIN validates a 9 digit taxpayer identification number
func (c *SriLankaTaxConfig) ValidateTIN(tin string) error {
	if tin == "" {
		return nil
	}

	cleaned := strings.ReplaceAll(strings.TrimSpace(tin), " ", "")
	if !tinRegex.MatchString(cleaned) {
		return errors.New("TIN must be 9 digits")
	}
	return nil
}

// GetRequiredTaxInvoiceFields returns the mandatory fields of a Sri Lankan tax invoice
func (c *SriLankaTaxConfig) GetRequiredTaxInvoiceFields() []string {
	return []string{
		"supplier_vat_number",
		"invoice_number",
		"invoice_date",
		"date_of_supply",
		"purchaser_name",
		"purchaser_tin",
		"description_of_goods",
		"vat_amount",
		"total_amount",
		"tax_invoice_label",
	}
}

// NewTaxConfig creates the tax configuration for a country code
func NewTaxConfig(countryCode string) (TaxConfig, error) {
	switch strings.ToUpper(countryCode) {
	case "LK", "LKA", "SRI_LANKA":
		return &SriLankaTaxConfig{}, nil
	default:
		return nil, fmt.Errorf("unsupported country code: %s", countryCode)
	}
}
