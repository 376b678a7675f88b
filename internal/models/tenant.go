package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tenant represents a business issuing invoices on the platform
type Tenant struct {
	ID              string           `json:"id" db:"id" validate:"required,uuid"`
	Name            string           `json:"name" db:"name" validate:"required,min=1,max=255"`
	BusinessAddress string           `json:"business_address" db:"business_address" validate:"required,min=1,max=500"`
	ContactEmail    string           `json:"contact_email" db:"contact_email" validate:"required,email"`
	Phone           *string          `json:"phone,omitempty" db:"phone"`
	TIN             *string          `json:"tin,omitempty" db:"tin"`
	InvoicePrefix   string           `json:"invoice_prefix" db:"invoice_prefix"`
	TaxProfile      TenantTaxProfile `json:"tax_profile"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

// NewTenant creates a tenant with generated ID, default prefix and an
// unregistered tax profile
func NewTenant(name, businessAddress, contactEmail string) *Tenant {
	now := time.Now().UTC()
	return &Tenant{
		ID:              uuid.New().String(),
		Name:            name,
		BusinessAddress: businessAddress,
		ContactEmail:    contactEmail,
		InvoicePrefix:   DefaultInvoicePrefix,
		TaxProfile: TenantTaxProfile{
			FiscalYearStart: DefaultFiscalYearStart,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the tenant data
func (t *Tenant) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tenant ID is required")
	}

	if err := ValidateRequired(t.Name, "name"); err != nil {
		return err
	}

	if err := ValidateStringLength(t.Name, "name", 1, 255); err != nil {
		return err
	}

	if err := ValidateRequired(t.BusinessAddress, "business_address"); err != nil {
		return err
	}

	if err := ValidateStringLength(t.BusinessAddress, "business_address", 1, 500); err != nil {
		return err
	}

	if err := ValidateRequired(t.ContactEmail, "contact_email"); err != nil {
		return err
	}

	if err := ValidateEmail(t.ContactEmail, "contact_email"); err != nil {
		return err
	}

	if t.Phone != nil && !IsValidPhone(*t.Phone) {
		return fmt.Errorf("invalid phone number: %s", *t.Phone)
	}

	if err := ValidateStringLength(t.InvoicePrefix, "invoice_prefix", 0, 20); err != nil {
		return err
	}

	if err := t.TaxProfile.Validate(); err != nil {
		return fmt.Errorf("invalid tax profile: %w", err)
	}

	return nil
}

// SetPhone sets the phone number
func (t *Tenant) SetPhone(phone string) {
	if strings.TrimSpace(phone) == "" {
		t.Phone = nil
	} else {
		t.Phone = &phone
	}
}

// SetTIN sets the taxpayer identification number
func (t *Tenant) SetTIN(tin string) {
	if strings.TrimSpace(tin) == "" {
		t.TIN = nil
	} else {
		t.TIN = &tin
	}
}

// GetInvoicePrefix returns the configured prefix or the default
func (t *Tenant) GetInvoicePrefix() string {
	if strings.TrimSpace(t.InvoicePrefix) == "" {
		return DefaultInvoicePrefix
	}
	return t.InvoicePrefix
}

// GetFormattedAddress returns the business address formatted for display
func (t *Tenant) GetFormattedAddress() string {
	return strings.ReplaceAll(t.BusinessAddress, "\n", ", ")
}

// GetTaxStatus returns a human-readable registration status
func (t *Tenant) GetTaxStatus() string {
	switch t.TaxProfile.Regime() {
	case TaxRegimeVAT:
		return "VAT Registered - " + t.TaxProfile.GetVATNumber()
	case TaxRegimeSVAT:
		return "SVAT Registered"
	default:
		return "Not VAT Registered"
	}
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (t *Tenant) UpdateTimestamp() {
	t.UpdatedAt = time.Now().UTC()
}
