package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxRegime identifies which Sri Lankan registration scheme a tenant operates under
type TaxRegime string

const (
	TaxRegimeVAT  TaxRegime = "vat"
	TaxRegimeSVAT TaxRegime = "svat"
	TaxRegimeNone TaxRegime = "none"
)

// IsValid reports whether the regime is one of the known values
func (r TaxRegime) IsValid() bool {
	switch r {
	case TaxRegimeVAT, TaxRegimeSVAT, TaxRegimeNone:
		return true
	}
	return false
}

// DefaultFiscalYearStart is the Sri Lankan year of assessment start (1 April)
const DefaultFiscalYearStart = "04-01"

// TenantTaxProfile is the tax registration profile of the issuing business.
//
// VATRegistered and SVATRegistered are mutually exclusive. Profiles built through
// NewTenantTaxProfile can never carry both flags; profiles decoded from untrusted
// input may, and Regime resolves the conflict in favour of VAT.
type TenantTaxProfile struct {
	VATRegistered   bool            `json:"vat_registered" db:"vat_registered"`
	VATNumber       *string         `json:"vat_number,omitempty" db:"vat_number"`
	SVATRegistered  bool            `json:"svat_registered" db:"svat_registered"`
	SSCLApplicable  bool            `json:"sscl_applicable" db:"sscl_applicable"`
	DefaultVATRate  decimal.Decimal `json:"default_vat_rate" db:"default_vat_rate"`
	FiscalYearStart string          `json:"fiscal_year_start" db:"fiscal_year_start"`
}

// NewTenantTaxProfile builds a profile for the given regime. VAT registration
// requires a VAT number; a zero rate falls back to the jurisdiction rate at
// calculation time.
func NewTenantTaxProfile(regime TaxRegime, vatNumber string, ssclApplicable bool, defaultVATRate decimal.Decimal, fiscalYearStart string) (*TenantTaxProfile, error) {
	if !regime.IsValid() {
		return nil, fmt.Errorf("invalid tax regime: %s", regime)
	}

	profile := &TenantTaxProfile{
		SSCLApplicable:  ssclApplicable,
		DefaultVATRate:  defaultVATRate,
		FiscalYearStart: fiscalYearStart,
	}
	if strings.TrimSpace(profile.FiscalYearStart) == "" {
		profile.FiscalYearStart = DefaultFiscalYearStart
	}

	switch regime {
	case TaxRegimeVAT:
		if strings.TrimSpace(vatNumber) == "" {
			return nil, fmt.Errorf("VAT number is required for VAT registered tenants")
		}
		profile.VATRegistered = true
		profile.SetVATNumber(vatNumber)
	case TaxRegimeSVAT:
		profile.SVATRegistered = true
		profile.SetVATNumber(vatNumber)
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Validate checks the profile invariants
func (p *TenantTaxProfile) Validate() error {
	if p.VATRegistered && p.SVATRegistered {
		return fmt.Errorf("tenant cannot be both VAT and SVAT registered")
	}

	if p.VATRegistered && !p.HasVATNumber() {
		return fmt.Errorf("VAT number is required for VAT registered tenants")
	}

	if p.DefaultVATRate.IsNegative() || p.DefaultVATRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("default VAT rate must be between 0 and 1")
	}

	if p.FiscalYearStart != "" {
		if _, _, err := ParseFiscalYearStart(p.FiscalYearStart); err != nil {
			return err
		}
	}

	return nil
}

// Regime resolves the effective regime: VAT first, then SVAT, else none
func (p TenantTaxProfile) Regime() TaxRegime {
	switch {
	case p.VATRegistered:
		return TaxRegimeVAT
	case p.SVATRegistered:
		return TaxRegimeSVAT
	default:
		return TaxRegimeNone
	}
}

// EffectiveVATRate is the VAT rate charged under this profile. A zero
// default rate means the jurisdiction rate given as fallback.
func (p TenantTaxProfile) EffectiveVATRate(fallback decimal.Decimal) decimal.Decimal {
	if p.Regime() != TaxRegimeVAT {
		return decimal.Zero
	}
	if p.DefaultVATRate.IsZero() {
		return fallback
	}
	return p.DefaultVATRate
}

// ChargesSSCL reports whether SSCL is added to invoices. SVAT suppresses it.
func (p TenantTaxProfile) ChargesSSCL() bool {
	return p.SSCLApplicable && p.Regime() != TaxRegimeSVAT
}

// TaxBasisChanges describes every difference from current that changes the
// calculated amounts of an invoice. Empty means amounts calculated under p
// still hold under current.
func (p TenantTaxProfile) TaxBasisChanges(current TenantTaxProfile, fallbackRate decimal.Decimal) []string {
	changes := []string{}

	if p.Regime() != current.Regime() {
		changes = append(changes, fmt.Sprintf("regime %s -> %s", p.Regime(), current.Regime()))
	}
	if p.ChargesSSCL() != current.ChargesSSCL() {
		changes = append(changes, fmt.Sprintf("sscl %t -> %t", p.ChargesSSCL(), current.ChargesSSCL()))
	}

	was, now := p.EffectiveVATRate(fallbackRate), current.EffectiveVATRate(fallbackRate)
	if !was.Equal(now) {
		changes = append(changes, fmt.Sprintf("vat rate %s -> %s", was.String(), now.String()))
	}

	return changes
}

// HasVATNumber returns true if a non-blank VAT number is set
func (p TenantTaxProfile) HasVATNumber() bool {
	return p.VATNumber != nil && strings.TrimSpace(*p.VATNumber) != ""
}

// GetVATNumber returns the VAT number or empty string if nil
func (p TenantTaxProfile) GetVATNumber() string {
	if p.VATNumber == nil {
		return ""
	}
	return *p.VATNumber
}

// SetVATNumber sets the VAT number, clearing it when blank
func (p *TenantTaxProfile) SetVATNumber(vatNumber string) {
	vatNumber = strings.TrimSpace(vatNumber)
	if vatNumber == "" {
		p.VATNumber = nil
		return
	}
	p.VATNumber = &vatNumber
}

// FiscalYear returns the year-of-assessment label for a date, e.g. "2024/2025"
// for a 1 April start. A calendar-year start yields a single year.
func (p TenantTaxProfile) FiscalYear(date time.Time) string {
	month, day, err := ParseFiscalYearStart(p.FiscalYearStart)
	if err != nil {
		month, day, _ = ParseFiscalYearStart(DefaultFiscalYearStart)
	}

	if month == 1 && day == 1 {
		return strconv.Itoa(date.Year())
	}

	startYear := date.Year()
	if int(date.Month()) < month || (int(date.Month()) == month && date.Day() < day) {
		startYear--
	}
	return fmt.Sprintf("%d/%d", startYear, startYear+1)
}

// ParseFiscalYearStart parses an MM-DD string
func ParseFiscalYearStart(value string) (month, day int, err error) {
	if strings.TrimSpace(value) == "" {
		value = DefaultFiscalYearStart
	}

	t, err := time.Parse("01-02", value)
	if err != nil {
		return 0, 0, fmt.Errorf("fiscal year start must be in MM-DD format: %s", value)
	}
	return int(t.Month()), t.Day(), nil
}

// ClientRegistrationType is the counterparty's registration scheme
type ClientRegistrationType string

const (
	ClientRegistrationVAT  ClientRegistrationType = "vat"
	ClientRegistrationSVAT ClientRegistrationType = "svat"
	ClientRegistrationNone ClientRegistrationType = "none"
)

// ClientProfile is the tax identity of the invoice recipient
type ClientProfile struct {
	RegistrationType ClientRegistrationType `json:"registration_type" db:"registration_type"`
	TIN              *string                `json:"tin,omitempty" db:"tin"`
	VATNumber        *string                `json:"vat_number,omitempty" db:"vat_number"`
}

// HasTIN returns true if a non-blank TIN is set
func (c ClientProfile) HasTIN() bool {
	return c.TIN != nil && strings.TrimSpace(*c.TIN) != ""
}

// IsRegistered returns true for VAT or SVAT registered clients
func (c ClientProfile) IsRegistered() bool {
	return c.RegistrationType == ClientRegistrationVAT || c.RegistrationType == ClientRegistrationSVAT
}

// Validate checks the registration type and the identifiers it needs
func (c ClientProfile) Validate() error {
	switch c.RegistrationType {
	case ClientRegistrationVAT:
		if c.VATNumber == nil || strings.TrimSpace(*c.VATNumber) == "" {
			return fmt.Errorf("VAT number is required for VAT registered clients")
		}
	case ClientRegistrationSVAT, ClientRegistrationNone:
	default:
		return fmt.Errorf("invalid client registration type: %s", c.RegistrationType)
	}
	return nil
}
